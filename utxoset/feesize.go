package utxoset

// Contractual fee-sizing constants: a flat,
// legacy-sized cost model used for every chain so the fee is never
// underestimated on a segwit or taproot chain. This is the ONLY model
// that sizes real PSBT outputs; any per-input-type breakdown is
// informational only (see purchase.DiagnosticFeeBreakdown).
const (
	BytesPerInput  = 180
	BytesPerOutput = 34
	BaseTxBytes    = 10
)

// EstimateFee implements the abstract cost model from §4.4:
// bytes_per_input·n_inputs + bytes_per_output·n_outputs + base, at the
// given fee rate in sat/vbyte.
func EstimateFee(numInputs, numOutputs int, feeRateSatVB int64) int64 {
	vsize := int64(BaseTxBytes) + int64(numInputs)*int64(BytesPerInput) + int64(numOutputs)*int64(BytesPerOutput)
	return vsize * feeRateSatVB
}
