package purchase

import "github.com/ordswap/swapengine/chainprofile"

// Per-address-type virtual sizes, informational only (p2wpkhInputVSize=68,
// p2wpkhOutputVSize=31, p2trInputVSize=58, p2trOutputVSize=43,
// legacyInputVSize=148, legacyOutputVSize=34, txOverheadVSize=10).
// These are never used to size an actual PSBT output or to compute the fee
// charged to a buyer — that is always the contractual legacy model in
// utxoset.EstimateFee. DiagnosticFeeBreakdown exists purely so a caller
// can display a tighter fee estimate alongside the contractual one.
const (
	p2wpkhInputVSize  = 68
	p2wpkhOutputVSize = 31
	p2trInputVSize    = 58
	p2trOutputVSize   = 43
	legacyInputVSize  = 148
	legacyOutputVSize = 34
	txOverheadVSize   = 10
)

// DiagnosticFeeBreakdown estimates a tighter, per-address-type fee for the
// given input/output address types, for display purposes only.
func DiagnosticFeeBreakdown(inputTypes, outputTypes []chainprofile.AddressType, feeRateSatVB int64) int64 {
	vsize := int64(txOverheadVSize)
	for _, t := range inputTypes {
		vsize += vsizeForInput(t)
	}
	for _, t := range outputTypes {
		vsize += vsizeForOutput(t)
	}
	return vsize * feeRateSatVB
}

func vsizeForInput(t chainprofile.AddressType) int64 {
	switch t {
	case chainprofile.P2TR:
		return p2trInputVSize
	case chainprofile.P2WPKH, chainprofile.P2WSH:
		return p2wpkhInputVSize
	default:
		return legacyInputVSize
	}
}

func vsizeForOutput(t chainprofile.AddressType) int64 {
	switch t {
	case chainprofile.P2TR:
		return p2trOutputVSize
	case chainprofile.P2WPKH, chainprofile.P2WSH:
		return p2wpkhOutputVSize
	default:
		return legacyOutputVSize
	}
}
