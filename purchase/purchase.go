// Package purchase implements C4 PurchaseBuilder: the buyer half-PSBT,
// embedding the 2-Dummy layout, platform fee, ordinal receive, and change
// outputs, with a placeholder input slot at index 2 for the seller's
// signed ordinal input (filled in later by package swap's Combiner).
// Construction follows the same wire.MsgTx → psbt.NewFromUnsignedTx →
// per-input attachment idiom as package listing.
package purchase

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/listing"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers"
	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swaperr"
	"github.com/ordswap/swapengine/utxoset"
)

// Fixed output indices, contractual across every purchase PSBT. If the
// platform-fee output is suppressed, BuyingPSBTPlatformFeeIndex no longer
// denotes "platform fee" — see the off-by-one risk noted in §9.
const (
	BuyingPSBTOrdinalInputIndex  = 2
	BuyingPSBTMergeOutputIndex   = 0
	BuyingPSBTReceiveOutputIndex = 1
	BuyingPSBTSellerOutputIndex  = 2
	BuyingPSBTPlatformFeeIndex   = 3
)

// Request carries the buyer-side arguments to BuildPurchasePSBT.
type Request struct {
	TakerFeeBP           uint16
	MakerFeeBP           uint16
	Price                int64
	OrdItem              ordinal.Item
	SellerReceiveAddress string

	PaymentAddress      string
	TokenReceiveAddress string
	ChangeAddress       string
	FeeRateTier         providers.FeeTier
	// PaymentPubKey is required when PaymentAddress decodes as P2SH, to
	// synthesize the p2sh(p2wpkh(pubkey)) redeem script.
	PaymentPubKey []byte
}

// Result is the unsigned buying PSBT plus the selected UTXOs, so a caller
// can persist them on the listing-state document for audit or retry.
type Result struct {
	PSBTBase64   string
	DummyUTXOs   [2]utxoset.UTXO
	PaymentUTXOs []utxoset.UTXO
	Fee          int64
	SellerPayout int64
	PlatformFee  int64
	ChangeAmount int64
}

// BuildPurchasePSBT constructs the buyer half-PSBT.
func BuildPurchasePSBT(ctx context.Context, sess *session.Session, req Request) (*Result, error) {
	if err := req.OrdItem.Validate(); err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: invalid ord item")
	}
	for _, addr := range []string{req.PaymentAddress, req.TokenReceiveAddress, req.SellerReceiveAddress} {
		if !sess.Chain.IsValidAddress(addr) {
			return nil, swaperr.New(swaperr.InvalidArgument, "purchase: invalid address %q", addr)
		}
	}
	changeAddress := req.ChangeAddress
	if changeAddress == "" {
		changeAddress = req.PaymentAddress
	}

	paymentType, _ := sess.Chain.ClassifyAddress(req.PaymentAddress)
	if paymentType == chainprofile.P2SH && len(req.PaymentPubKey) == 0 {
		return nil, swaperr.New(swaperr.InvalidArgument, "purchase: payment pubkey required for P2SH-wrapped-segwit payment address")
	}

	mergeScript, err := sess.Chain.ScriptPubKey(req.PaymentAddress)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: payment address scriptPubKey")
	}

	feeRate, err := sess.Providers.Fee.GetFee(ctx, req.FeeRateTier)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "purchase: fetching fee rate")
	}

	rawUTXOs, err := sess.Providers.UTXO.GetAddressUTXOs(ctx, req.PaymentAddress)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "purchase: fetching address utxos")
	}
	candidates := make([]utxoset.UTXO, 0, len(rawUTXOs))
	for _, u := range rawUTXOs {
		candidates = append(candidates, utxoset.UTXO{Outpoint: u.Outpoint, Value: u.Value, Confirmed: u.Confirmed, AddressType: paymentType})
	}

	classifier := utxoset.New(sess)
	dummy1, dummy2, ok, err := classifier.SelectDummyUTXOs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, swaperr.New(swaperr.InsufficientFunds, "purchase: fewer than two eligible dummy utxos in [%d,%d]", sess.Config.DummyUTXOMinValue, sess.Config.DummyUTXOMaxValue)
	}

	remaining := excludeOutpoints(candidates, dummy1.Outpoint, dummy2.Outpoint)

	sellerPayout := listing.SellerPayout(req.Price, req.MakerFeeBP, req.OrdItem.OutputValue)
	platformFee := req.Price * (int64(req.MakerFeeBP) + int64(req.TakerFeeBP)) / 10000
	includeFeeOutput := platformFee > sess.Chain.DustLimit() && sess.Config.PlatformFeeAddress != ""

	// The buyer must fund the seller's payout net of the postage already
	// carried by the ordinal output itself, plus the platform fee (if
	// charged), the two freshly-rebuilt dummies, and the offset+postage
	// sats that output[0] (merge) and output[1] (receive) pay out beyond
	// what the two dummies and the seller's own input value cover. The
	// merge output only recombines dummy1+dummy2 out of the seller's
	// spent input for free; the offset itself, and the fixed postage
	// value of the receive output, are buyer-funded.
	amount := sellerPayout - req.OrdItem.OutputValue + req.OrdItem.Location.Offset + sess.Config.OrdinalsPostageValue + sess.Config.DummyUTXOValue*2
	if includeFeeOutput {
		amount += platformFee
	}

	baseVins := 3               // 2 dummies + seller ordinal placeholder
	baseVouts := 3 + 2 + 1      // merge, receive, seller + two new dummies + change (conservative: assume change present)
	if includeFeeOutput {
		baseVouts++
	}

	paymentUTXOs, fee, err := classifier.SelectPaymentUTXOs(ctx, remaining, amount, baseVins, baseVouts, feeRate)
	if err != nil {
		return nil, err
	}

	var totalPayment int64
	for _, u := range paymentUTXOs {
		totalPayment += u.Value
	}

	mergeValue := dummy1.Value + dummy2.Value + req.OrdItem.Location.Offset
	changeAmount := totalPayment - amount - fee
	includeChange := changeAmount > sess.Chain.DustLimit()
	if !includeChange {
		changeAmount = 0
	}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(outpointFrom(dummy1.Outpoint), nil, nil))
	tx.AddTxIn(wire.NewTxIn(outpointFrom(dummy2.Outpoint), nil, nil))
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil)) // placeholder for seller ordinal input
	for _, u := range paymentUTXOs {
		tx.AddTxIn(wire.NewTxIn(outpointFrom(u.Outpoint), nil, nil))
	}

	receiveScript, err := sess.Chain.ScriptPubKey(req.TokenReceiveAddress)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: receive address scriptPubKey")
	}
	sellerScript, err := sess.Chain.ScriptPubKey(req.SellerReceiveAddress)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: seller receive address scriptPubKey")
	}

	tx.AddTxOut(wire.NewTxOut(mergeValue, mergeScript))
	tx.AddTxOut(wire.NewTxOut(sess.Config.OrdinalsPostageValue, receiveScript))
	tx.AddTxOut(wire.NewTxOut(sellerPayout, sellerScript))

	if includeFeeOutput {
		feeScript, err := sess.Chain.ScriptPubKey(sess.Config.PlatformFeeAddress)
		if err != nil {
			return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: platform fee address scriptPubKey")
		}
		tx.AddTxOut(wire.NewTxOut(platformFee, feeScript))
	}

	tx.AddTxOut(wire.NewTxOut(sess.Config.DummyUTXOValue, mergeScript))
	tx.AddTxOut(wire.NewTxOut(sess.Config.DummyUTXOValue, mergeScript))

	if includeChange {
		changeScript, err := sess.Chain.ScriptPubKey(changeAddress)
		if err != nil {
			return nil, swaperr.Wrap(swaperr.InvalidArgument, err, "purchase: change address scriptPubKey")
		}
		tx.AddTxOut(wire.NewTxOut(changeAmount, changeScript))
	}

	p, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "purchase: constructing PSBT")
	}

	attachInputUTXO(p, 0, dummy1, mergeScript, req.PaymentPubKey)
	attachInputUTXO(p, 1, dummy2, mergeScript, req.PaymentPubKey)
	// Input 2 is left empty: the Combiner splices the seller's signed
	// input and PSBT metadata into this slot.
	for i, u := range paymentUTXOs {
		attachInputUTXO(p, 3+i, u, mergeScript, req.PaymentPubKey)
	}

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return nil, swaperr.Wrap(swaperr.ProviderError, err, "purchase: serializing PSBT")
	}

	return &Result{
		PSBTBase64:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		DummyUTXOs:   [2]utxoset.UTXO{dummy1, dummy2},
		PaymentUTXOs: paymentUTXOs,
		Fee:          fee,
		SellerPayout: sellerPayout,
		PlatformFee:  platformFee,
		ChangeAmount: changeAmount,
	}, nil
}

func excludeOutpoints(utxos []utxoset.UTXO, exclude ...chainprofile.Outpoint) []utxoset.UTXO {
	out := make([]utxoset.UTXO, 0, len(utxos))
	for _, u := range utxos {
		skip := false
		for _, e := range exclude {
			if u.Outpoint == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, u)
		}
	}
	return out
}

func outpointFrom(o chainprofile.Outpoint) *wire.OutPoint {
	return &wire.OutPoint{Hash: o.Txid, Index: o.Vout}
}

// attachInputUTXO attaches witness-UTXO (and, for P2SH, redeem-script)
// metadata to input index of p. Every buyer input spends the same payment
// address, so its scriptPubKey (paymentScript) is already known without a
// further provider round-trip.
func attachInputUTXO(p *psbt.Packet, index int, u utxoset.UTXO, paymentScript []byte, paymentPubKey []byte) {
	p.Inputs[index].WitnessUtxo = &wire.TxOut{Value: u.Value, PkScript: paymentScript}

	if u.AddressType == chainprofile.P2SH {
		p.Inputs[index].RedeemScript = p2shP2WPKHRedeemScript(paymentPubKey)
	}
}

func p2shP2WPKHRedeemScript(pubKey []byte) []byte {
	hash160 := btcutil.Hash160(pubKey)
	return append([]byte{0x00, 0x14}, hash160...)
}
