package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FeeOracleClient is the default FeeProvider implementation: a simple
// HTTP GET against a mempool-fee-estimate style endpoint, in the same
// single-purpose-client idiom as NodeRPCClient.
type FeeOracleClient struct {
	baseURL string
	http    *http.Client
}

// NewFeeOracleClient constructs a client against a fee-estimate service.
func NewFeeOracleClient(baseURL string, timeout time.Duration) *FeeOracleClient {
	return &FeeOracleClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *FeeOracleClient) GetFeesRecommended(ctx context.Context) (*RecommendedFees, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/fees/recommended", nil)
	if err != nil {
		return nil, fmt.Errorf("providers: fee oracle: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("providers: fee oracle: %w", err)
	}
	defer resp.Body.Close()

	var out RecommendedFees
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("providers: fee oracle: decode: %w", err)
	}
	return &out, nil
}

// GetFee resolves a single tier, defaulting an unrecognized tier to
// HourFee per §6.
func (c *FeeOracleClient) GetFee(ctx context.Context, tier FeeTier) (int64, error) {
	rec, err := c.GetFeesRecommended(ctx)
	if err != nil {
		return 0, err
	}
	switch tier {
	case FastestFee:
		return rec.FastestFee, nil
	case HalfHourFee:
		return rec.HalfHourFee, nil
	case MinimumFee:
		return rec.MinimumFee, nil
	case HourFee:
		return rec.HourFee, nil
	default:
		return rec.HourFee, nil
	}
}
