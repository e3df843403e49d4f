package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/ordinal"
)

// ItemIndexerClient is the default ItemProvider implementation: an
// inscription-indexer HTTP client.
type ItemIndexerClient struct {
	baseURL string
	http    *http.Client
}

// NewItemIndexerClient constructs a client against an inscription indexer.
func NewItemIndexerClient(baseURL string, timeout time.Duration) *ItemIndexerClient {
	return &ItemIndexerClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type itemRecord struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	LocationTxo string `json:"location"`
	OutputTxo   string `json:"output"`
	Offset      int64  `json:"offset"`
	OutputValue int64  `json:"output_value"`
}

func (r itemRecord) toItem() (*ordinal.Item, error) {
	output, err := chainprofile.ParseOutpoint(r.OutputTxo)
	if err != nil {
		return nil, fmt.Errorf("providers: item indexer: %w", err)
	}
	item := &ordinal.Item{
		ID:          r.ID,
		Owner:       r.Owner,
		Location:    ordinal.Location{Txid: output, Offset: r.Offset},
		Output:      output,
		OutputValue: r.OutputValue,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *ItemIndexerClient) fetch(ctx context.Context, path string) (*ordinal.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("providers: item indexer: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("providers: item indexer: %w", err)
	}
	defer resp.Body.Close()

	var rec itemRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("providers: item indexer: decode: %w", err)
	}
	return rec.toItem()
}

func (c *ItemIndexerClient) GetTokenByOutput(ctx context.Context, out chainprofile.Outpoint) (*ordinal.Item, error) {
	return c.fetch(ctx, "/output/"+url.PathEscape(out.String()))
}

func (c *ItemIndexerClient) GetTokenByID(ctx context.Context, id string) (*ordinal.Item, error) {
	return c.fetch(ctx, "/inscription/"+url.PathEscape(id))
}
