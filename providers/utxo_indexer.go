package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ordswap/swapengine/chainprofile"
)

// UTXOIndexerClient is the default UTXOProvider implementation: an
// address-indexer HTTP client, grounded on the same request/decode shape
// as FeeOracleClient and NodeRPCClient.
type UTXOIndexerClient struct {
	baseURL string
	http    *http.Client
}

// NewUTXOIndexerClient constructs a client against an address indexer.
func NewUTXOIndexerClient(baseURL string, timeout time.Duration) *UTXOIndexerClient {
	return &UTXOIndexerClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *UTXOIndexerClient) GetAddressUTXOs(ctx context.Context, addr string) ([]AddressTxUTXO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/address/"+addr+"/utxo", nil)
	if err != nil {
		return nil, fmt.Errorf("providers: utxo indexer: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("providers: utxo indexer: %w", err)
	}
	defer resp.Body.Close()

	var raw []struct {
		Txid   string `json:"txid"`
		Vout   uint32 `json:"vout"`
		Value  int64  `json:"value"`
		Status struct {
			Confirmed bool `json:"confirmed"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("providers: utxo indexer: decode: %w", err)
	}

	out := make([]AddressTxUTXO, 0, len(raw))
	for _, r := range raw {
		txid, err := chainprofile.ParseOutpoint(fmt.Sprintf("%s:%d", r.Txid, r.Vout))
		if err != nil {
			return nil, fmt.Errorf("providers: utxo indexer: %w", err)
		}
		out = append(out, AddressTxUTXO{Outpoint: txid, Value: r.Value, Confirmed: r.Status.Confirmed})
	}
	return out, nil
}
