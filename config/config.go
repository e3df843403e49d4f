// Package config loads the process-wide configuration keys named in
// the engine's documented configuration keys, using envconfig the way Fantasim-hdpay's
// internal/config package does for its own multi-chain poller.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the engine's configuration keys. Values are defaulted per
// spec and may be overridden by SWAP_* environment variables.
type Config struct {
	// DummyUTXOValue is the value a freshly-created dummy UTXO is given.
	DummyUTXOValue int64 `envconfig:"DUMMY_UTXO_VALUE" default:"600"`
	// DummyUTXOMinValue / DummyUTXOMaxValue bound the range an existing
	// UTXO must fall in to be selected as a dummy.
	DummyUTXOMinValue int64 `envconfig:"DUMMY_UTXO_MIN_VALUE" default:"580"`
	DummyUTXOMaxValue int64 `envconfig:"DUMMY_UTXO_MAX_VALUE" default:"1000"`
	// OrdinalsPostageValue is the value of the output the inscription
	// lands in on the buyer side.
	OrdinalsPostageValue int64 `envconfig:"ORDINALS_POSTAGE_VALUE" default:"10000"`
	// PlatformFeeAddress receives the combined maker+taker fee output.
	// Empty suppresses that output entirely.
	PlatformFeeAddress string `envconfig:"PLATFORM_FEE_ADDRESS" default:""`
	// DelistMagicPrice is a reserved constant for out-of-band delisting
	// signalling. It is not consulted anywhere in this engine.
	DelistMagicPrice int64 `envconfig:"DELIST_MAGIC_PRICE" default:"2000000000000000"`
	// DefaultFeeTier is loaded but not consulted by the builders: they pass
	// the request's tier straight to the fee provider, and the provider
	// implementations map an empty or unrecognized tier to hourFee.
	DefaultFeeTier string `envconfig:"DEFAULT_FEE_TIER" default:"hourFee"`
	// ProviderTimeout is loaded but not passed to any provider client;
	// each client constructor in package providers takes its own timeout.
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`
}

// Load reads configuration from the environment (prefix SWAP_), applying
// the defaults above for anything unset.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("swap", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
