package chainprofile

// AddressType is the closed enum every downstream component branches on,
// replacing string-prefix heuristics (§9 design note).
type AddressType int

const (
	Unknown AddressType = iota
	P2PKH
	P2SH
	P2WPKH
	P2WSH
	P2TR
)

func (t AddressType) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2SH:
		return "p2sh"
	case P2WPKH:
		return "p2wpkh"
	case P2WSH:
		return "p2wsh"
	case P2TR:
		return "p2tr"
	default:
		return "unknown"
	}
}
