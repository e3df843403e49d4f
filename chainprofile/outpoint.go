package chainprofile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Outpoint is a (txid, vout) pair, rendered textually as "txid:vout".
type Outpoint struct {
	Txid chainhash.Hash
	Vout uint32
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.Txid.String(), o.Vout)
}

// ParseOutpoint parses a "txid:vout" string.
func ParseOutpoint(s string) (Outpoint, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Outpoint{}, fmt.Errorf("chainprofile: malformed outpoint %q", s)
	}
	hash, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return Outpoint{}, fmt.Errorf("chainprofile: malformed outpoint txid %q: %w", s, err)
	}
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Outpoint{}, fmt.Errorf("chainprofile: malformed outpoint vout %q: %w", s, err)
	}
	return Outpoint{Txid: *hash, Vout: uint32(vout)}, nil
}
