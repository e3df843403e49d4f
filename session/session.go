// Package session defines the Session type that every builder and
// verifier operation takes as its first argument: a chain profile, a
// bundle of external providers, engine configuration, and a logger.
// There is no lazily-connected shared client here: every provider call
// is a stateless HTTP round-trip made on demand.
package session

import (
	"github.com/hashicorp/go-hclog"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/config"
	"github.com/ordswap/swapengine/providers"
)

// Session bundles everything a ListingBuilder, PurchaseBuilder, or
// Combiner/Verifier operation needs: which chain it targets, which
// external collaborators to call, and engine-wide configuration.
type Session struct {
	Chain     *chainprofile.Profile
	Providers providers.Bundle
	Config    config.Config
	Logger    hclog.Logger
}

// New constructs a Session. A nil logger is replaced with a no-op logger,
// matching the pattern of always having a usable logger.
func New(chain *chainprofile.Profile, bundle providers.Bundle, cfg config.Config, logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{Chain: chain, Providers: bundle, Config: cfg, Logger: logger}
}
