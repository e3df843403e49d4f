// Package ordinal models the inscription/item data that flows through the
// swap engine's PSBT construction and verification pipeline. The engine
// never inspects inscription content itself — it only needs location and
// ownership metadata, supplied by an external indexer (providers.ItemProvider).
package ordinal

import (
	"fmt"

	"github.com/ordswap/swapengine/chainprofile"
)

// Location is the txid:vout:offset triple identifying exactly where an
// inscription's first satoshi sits.
type Location struct {
	Txid   chainprofile.Outpoint
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Txid.String(), l.Offset)
}

// Item is the minimal inscription record the engine consumes.
type Item struct {
	ID          string
	Owner       string
	Location    Location
	Output      chainprofile.Outpoint
	OutputValue int64
}

// Validate enforces the item's location/output consistency invariants:
// location.txid:vout == output, and 0 <= offset < output_value.
func (it Item) Validate() error {
	if it.Location.Txid != it.Output {
		return fmt.Errorf("ordinal: item %s: location outpoint %s does not match output %s", it.ID, it.Location.Txid, it.Output)
	}
	if it.Location.Offset < 0 || it.Location.Offset >= it.OutputValue {
		return fmt.Errorf("ordinal: item %s: offset %d out of range [0,%d)", it.ID, it.Location.Offset, it.OutputValue)
	}
	return nil
}
