package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MarketplaceFeeClient is the default, optional MarketplaceFeeProvider
// implementation. A Session is never required to hold one — Bundle's
// MakerFeeBP/TakerFeeBP helpers treat a nil MarketplaceFee as 0bp.
type MarketplaceFeeClient struct {
	baseURL string
	http    *http.Client
}

// NewMarketplaceFeeClient constructs a client against a marketplace's fee
// schedule endpoint.
func NewMarketplaceFeeClient(baseURL string, timeout time.Duration) *MarketplaceFeeClient {
	return &MarketplaceFeeClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *MarketplaceFeeClient) fetchBP(ctx context.Context, kind, addr string) (uint16, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fees/"+kind+"?address="+url.QueryEscape(addr), nil)
	if err != nil {
		return 0, fmt.Errorf("providers: marketplace fee: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("providers: marketplace fee: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		BasisPoints uint16 `json:"basis_points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("providers: marketplace fee: decode: %w", err)
	}
	return out.BasisPoints, nil
}

func (c *MarketplaceFeeClient) GetMakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	return c.fetchBP(ctx, "maker", addr)
}

func (c *MarketplaceFeeClient) GetTakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	return c.fetchBP(ctx, "taker", addr)
}
