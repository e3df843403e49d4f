// Package listing implements C3 ListingBuilder: the seller half-PSBT,
// carrying exactly one input (the inscription's outpoint) and one output
// (the seller's payout), signed under SIGHASH_SINGLE|ANYONECANPAY so it
// can later be spliced into an arbitrary buyer-constructed transaction at
// a fixed index. Construction follows the PSBT-assembly idiom of
// path_wallet_psbt.go's create endpoint: build a wire.MsgTx, wrap it with
// psbt.NewFromUnsignedTx, then attach per-input UTXO and signing metadata.
package listing

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swaperr"
)

// Request carries the seller-side arguments to BuildListingPSBT.
type Request struct {
	MakerFeeBP     uint16
	OrdItem        ordinal.Item
	ReceiveAddress string
	// TapInternalKey, if non-nil, is the 32-byte x-only internal key for a
	// taproot input. Leave nil for non-taproot inputs.
	TapInternalKey []byte
}

// SellerPayout computes price - floor(price*maker_fee_bp/10000) +
// ord_item.output_value, per §4.3.
func SellerPayout(price int64, makerFeeBP uint16, ordItemOutputValue int64) int64 {
	fee := price * int64(makerFeeBP) / 10000
	return price - fee + ordItemOutputValue
}

// Result is the unsigned listing PSBT, base64-encoded, ready for the
// seller's external signer.
type Result struct {
	PSBTBase64 string
	Payout     int64
}

// BuildListingPSBT constructs the seller half-PSBT for a fixed price.
func BuildListingPSBT(ctx context.Context, sess *session.Session, req Request, price int64) (*Result, error) {
	if err := req.OrdItem.Validate(); err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "listing: invalid ord item")
	}
	if !sess.Chain.IsValidAddress(req.ReceiveAddress) {
		return nil, swaperr.New(swaperr.InvalidArgument, "listing: invalid receive address %q", req.ReceiveAddress)
	}

	parentTxid := req.OrdItem.Output.Txid
	parentHex, err := sess.Providers.RPC.GetRawTransaction(ctx, parentTxid)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "listing: fetching parent transaction %s", parentTxid)
	}
	parentTx, err := decodeTxHex(parentHex)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "listing: decoding parent transaction %s", parentTxid)
	}

	vout := req.OrdItem.Output.Vout
	if int(vout) >= len(parentTx.TxOut) {
		return nil, swaperr.New(swaperr.InvalidArgument, "listing: ord item output index %d out of range for parent tx", vout)
	}
	spentOut := parentTx.TxOut[vout]

	payout := SellerPayout(price, req.MakerFeeBP, req.OrdItem.OutputValue)
	if payout <= 0 {
		return nil, swaperr.New(swaperr.InvalidArgument, "listing: computed non-positive payout %d", payout)
	}

	receiveScript, err := scriptPubKeyFor(sess, req.ReceiveAddress)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "listing: receive address scriptPubKey")
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: parentTxid, Index: vout}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(payout, receiveScript))

	p, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "listing: constructing PSBT")
	}

	// Clear witness data from the fetched parent transaction's inputs so
	// its serialization is the legacy, non-witness form regardless of how
	// the node returned it — a workaround for nodes that hand back
	// segwit-serialized transactions.
	normalizedParent := parentTx.Copy()
	for _, in := range normalizedParent.TxIn {
		in.Witness = nil
	}
	p.Inputs[0].NonWitnessUtxo = normalizedParent

	p.Inputs[0].WitnessUtxo = &wire.TxOut{
		Value:    spentOut.Value,
		PkScript: spentOut.PkScript,
	}

	if req.TapInternalKey != nil {
		if len(req.TapInternalKey) != 32 {
			return nil, swaperr.New(swaperr.InvalidArgument, "listing: tap internal key must be 32 bytes, got %d", len(req.TapInternalKey))
		}
		p.Inputs[0].TaprootInternalKey = req.TapInternalKey
	}

	p.Inputs[0].SighashType = txscript.SigHashSingle | txscript.SigHashAnyOneCanPay

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "listing: serializing PSBT")
	}

	return &Result{
		PSBTBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Payout:     payout,
	}, nil
}

func decodeTxHex(h string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("listing: decoding tx hex: %w", err)
	}
	tx := wire.NewMsgTx(2)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("listing: deserializing tx: %w", err)
	}
	return tx, nil
}

func scriptPubKeyFor(sess *session.Session, addr string) ([]byte, error) {
	return sess.Chain.ScriptPubKey(addr)
}
