// Package swap implements C5 Combiner/Verifier: validating a seller's
// signed listing PSBT against its claimed terms, and splicing it into a
// buyer-constructed purchase PSBT at the fixed ordinal-input slot.
// Finalization and broadcast are left to the external RPC provider
// (finalize_psbt, test_mempool_accept, send_raw_transaction); the node
// is the sole authority on script validity.
package swap

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/listing"
	"github.com/ordswap/swapengine/purchase"
	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swaperr"
)

// emptySchnorrSentinel is the placeholder witness payload the engine's
// upstream signer writes into a taproot input before it has actually been
// signed; its presence means "unsigned", not "signed with an empty sig".
var emptySchnorrSentinel = []byte{0x01, 0x41}

// VerifyRequest carries the claimed terms a signed listing is checked
// against.
type VerifyRequest struct {
	TokenID        string
	Price          int64
	ReceiveAddress string
	// TapInternalKey, if non-nil, marks the listing input as taproot and
	// triggers the witness-sentinel check.
	TapInternalKey []byte
}

// VerifySignedListing implements §4.5's six checks. Any mismatch returns
// an InvalidArgument error; a nil return means all six checks passed.
func VerifySignedListing(ctx context.Context, sess *session.Session, psbtB64 string, req VerifyRequest) error {
	p, err := decodePacket(psbtB64)
	if err != nil {
		return swaperr.Wrap(swaperr.InvalidArgument, err, "swap: decoding listing psbt")
	}

	if len(p.UnsignedTx.TxIn) != 1 || len(p.Inputs) != 1 {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing psbt must carry exactly 1 input, got %d", len(p.UnsignedTx.TxIn))
	}
	if len(p.UnsignedTx.TxOut) != 1 || len(p.Outputs) != 1 {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing psbt must carry exactly 1 output, got %d", len(p.UnsignedTx.TxOut))
	}

	in := p.Inputs[0]
	if len(req.TapInternalKey) > 0 {
		if len(in.FinalScriptWitness) == 0 || bytes.Equal(in.FinalScriptWitness, emptySchnorrSentinel) {
			return swaperr.New(swaperr.InvalidArgument, "swap: listing psbt taproot input carries no signature")
		}
	}

	analysis, err := sess.Providers.RPC.AnalyzePSBT(ctx, psbtB64)
	if err != nil {
		return swaperr.Wrap(swaperr.ProviderError, err, "swap: analyzing listing psbt")
	}
	if len(analysis.Inputs) == 0 || !analysis.Inputs[0].IsFinal {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing psbt input is not finalized")
	}

	prevOutpoint := outpointOf(p, 0)
	item, err := sess.Providers.Item.GetTokenByOutput(ctx, prevOutpoint)
	if err != nil {
		return swaperr.Wrap(swaperr.ProviderError, err, "swap: resolving inscription at %s", prevOutpoint)
	}
	if item == nil || item.ID != req.TokenID {
		return swaperr.New(swaperr.InvalidArgument, "swap: outpoint %s does not carry token %q", prevOutpoint, req.TokenID)
	}

	makerFeeBP, err := sess.Providers.MakerFeeBP(ctx, item.Owner)
	if err != nil {
		return swaperr.Wrap(swaperr.ProviderError, err, "swap: fetching maker fee for %s", item.Owner)
	}
	wantPayout := listing.SellerPayout(req.Price, makerFeeBP, item.OutputValue)
	gotPayout := p.UnsignedTx.TxOut[0].Value
	if gotPayout != wantPayout {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing output pays %d, want %d", gotPayout, wantPayout)
	}

	gotReceiveAddr, err := sess.Chain.AddressFromScript(p.UnsignedTx.TxOut[0].PkScript)
	if err != nil {
		return swaperr.Wrap(swaperr.InvalidArgument, err, "swap: decoding listing output script")
	}
	if gotReceiveAddr != req.ReceiveAddress {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing output pays %q, want %q", gotReceiveAddr, req.ReceiveAddress)
	}

	prevScript, err := previousOutputScript(p, 0)
	if err != nil {
		return swaperr.Wrap(swaperr.InvalidArgument, err, "swap: resolving spent output script")
	}
	sellerAddr, err := sess.Chain.AddressFromScript(prevScript)
	if err != nil {
		return swaperr.Wrap(swaperr.InvalidArgument, err, "swap: decoding spent output script")
	}
	if sellerAddr != item.Owner {
		return swaperr.New(swaperr.InvalidArgument, "swap: listing input spends %q, want owner %q", sellerAddr, item.Owner)
	}

	return nil
}

// Merge splices the seller's single input and its PSBT input metadata
// into slot BuyingPSBTOrdinalInputIndex of the buyer PSBT, replacing the
// placeholder left by purchase.BuildPurchasePSBT. No other field is
// touched, and the result depends only on its two arguments: calling
// Merge twice on the same pair yields byte-identical output.
func Merge(sellerPSBTB64, buyerPSBTB64 string) (string, error) {
	seller, err := decodePacket(sellerPSBTB64)
	if err != nil {
		return "", swaperr.Wrap(swaperr.InvalidArgument, err, "swap: decoding seller psbt")
	}
	if len(seller.UnsignedTx.TxIn) != 1 || len(seller.Inputs) != 1 {
		return "", swaperr.New(swaperr.InvalidArgument, "swap: seller psbt must carry exactly 1 input")
	}

	buyer, err := decodePacket(buyerPSBTB64)
	if err != nil {
		return "", swaperr.Wrap(swaperr.InvalidArgument, err, "swap: decoding buyer psbt")
	}
	idx := purchase.BuyingPSBTOrdinalInputIndex
	if len(buyer.UnsignedTx.TxIn) <= idx || len(buyer.Inputs) <= idx {
		return "", swaperr.New(swaperr.InvalidArgument, "swap: buyer psbt has no input slot at index %d", idx)
	}

	buyer.UnsignedTx.TxIn[idx] = seller.UnsignedTx.TxIn[0]
	buyer.Inputs[idx] = seller.Inputs[0]

	var buf bytes.Buffer
	if err := buyer.Serialize(&buf); err != nil {
		return "", swaperr.Wrap(swaperr.ProviderError, err, "swap: serializing merged psbt")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodePacket(b64 string) (*psbt.Packet, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("swap: decoding base64: %w", err)
	}
	return psbt.NewFromRawBytes(bytes.NewReader(raw), false)
}

func outpointOf(p *psbt.Packet, index int) chainprofile.Outpoint {
	prev := p.UnsignedTx.TxIn[index].PreviousOutPoint
	return chainprofile.Outpoint{Txid: prev.Hash, Vout: prev.Index}
}

// previousOutputScript returns the scriptPubKey of the output spent by
// input index, preferring WitnessUtxo and falling back to the full parent
// transaction carried as NonWitnessUtxo.
func previousOutputScript(p *psbt.Packet, index int) ([]byte, error) {
	in := p.Inputs[index]
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo.PkScript, nil
	}
	if in.NonWitnessUtxo != nil {
		vout := p.UnsignedTx.TxIn[index].PreviousOutPoint.Index
		if int(vout) >= len(in.NonWitnessUtxo.TxOut) {
			return nil, fmt.Errorf("swap: previous output index %d out of range", vout)
		}
		return in.NonWitnessUtxo.TxOut[vout].PkScript, nil
	}
	return nil, fmt.Errorf("swap: input %d carries no witness or non-witness utxo", index)
}
