package swap_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/config"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers"
	"github.com/ordswap/swapengine/providers/providerstest"
	"github.com/ordswap/swapengine/purchase"
	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swap"
)

const (
	sellerOwnerAddr  = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	buyerReceiveAddr = "bc1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3qccfmv3"
)

func itemHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

// buildSignedListingPacket hand-assembles a psbt.Packet shaped like
// listing.BuildListingPSBT's output, plus a finalized (non-sentinel)
// witness, standing in for an externally signed listing since this module
// never runs a real signer.
func buildSignedListingPacket(t *testing.T, itemOutpoint chainprofile.Outpoint, sellerScript []byte, itemOutputValue, payout int64, receiveScript []byte) *psbt.Packet {
	t.Helper()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: itemOutpoint.Txid, Index: itemOutpoint.Vout}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(payout, receiveScript))

	p, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		t.Fatalf("psbt.NewFromUnsignedTx: %v", err)
	}
	p.Inputs[0].WitnessUtxo = &wire.TxOut{Value: itemOutputValue, PkScript: sellerScript}
	witness := make([]byte, 66)
	witness[0] = 0x01
	witness[1] = 0x41
	for i := 2; i < len(witness); i++ {
		witness[i] = 0xAB
	}
	p.Inputs[0].FinalScriptWitness = witness
	return p
}

func encodePacket(t *testing.T, p *psbt.Packet) string {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newSwapSession(t *testing.T, makerBP uint16) (*session.Session, *providerstest.Item) {
	t.Helper()
	bundle, _, _, _, item, mkt := providerstest.Bundle()
	mkt.MakerBP = map[string]uint16{sellerOwnerAddr: makerBP}
	return session.New(chainprofile.Bitcoin(), bundle, config.Config{}, nil), item
}

// TestVerifySignedListing_Accepts_S1 exercises scenario S1's price
// arithmetic end-to-end through the verifier (I7's accept path).
func TestVerifySignedListing_Accepts_S1(t *testing.T) {
	sess, item := newSwapSession(t, 100)
	itemOutpoint := chainprofile.Outpoint{Txid: itemHash(0x09), Vout: 0}

	it := ordinal.Item{
		ID:          "insc-1",
		Owner:       sellerOwnerAddr,
		Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
		Output:      itemOutpoint,
		OutputValue: 10000,
	}
	item.Put(it)

	sellerScript, err := sess.Chain.ScriptPubKey(sellerOwnerAddr)
	if err != nil {
		t.Fatalf("seller scriptPubKey: %v", err)
	}
	receiveScript, err := sess.Chain.ScriptPubKey(buyerReceiveAddr)
	if err != nil {
		t.Fatalf("receive scriptPubKey: %v", err)
	}

	p := buildSignedListingPacket(t, itemOutpoint, sellerScript, 10000, 109000, receiveScript)
	b64 := encodePacket(t, p)

	err = swap.VerifySignedListing(context.Background(), sess, b64, swap.VerifyRequest{
		TokenID:        "insc-1",
		Price:          100000,
		ReceiveAddress: buyerReceiveAddr,
	})
	if err != nil {
		t.Fatalf("VerifySignedListing: %v", err)
	}
}

// TestVerifySignedListing_RejectsTamperedPrice_S5 exercises scenario S5: a
// listing claiming price=100000 but paying only 108999 must be rejected.
func TestVerifySignedListing_RejectsTamperedPrice_S5(t *testing.T) {
	sess, item := newSwapSession(t, 100)
	itemOutpoint := chainprofile.Outpoint{Txid: itemHash(0x09), Vout: 0}

	it := ordinal.Item{
		ID:          "insc-1",
		Owner:       sellerOwnerAddr,
		Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
		Output:      itemOutpoint,
		OutputValue: 10000,
	}
	item.Put(it)

	sellerScript, _ := sess.Chain.ScriptPubKey(sellerOwnerAddr)
	receiveScript, _ := sess.Chain.ScriptPubKey(buyerReceiveAddr)

	p := buildSignedListingPacket(t, itemOutpoint, sellerScript, 10000, 108999, receiveScript)
	b64 := encodePacket(t, p)

	err := swap.VerifySignedListing(context.Background(), sess, b64, swap.VerifyRequest{
		TokenID:        "insc-1",
		Price:          100000,
		ReceiveAddress: buyerReceiveAddr,
	})
	if err == nil {
		t.Fatalf("expected rejection of tampered price")
	}
}

// TestVerifySignedListing_RejectsWrongTokenID exercises I7: check 3
// (inscription identity) failing must reject even when every other field
// is well-formed.
func TestVerifySignedListing_RejectsWrongTokenID(t *testing.T) {
	sess, item := newSwapSession(t, 100)
	itemOutpoint := chainprofile.Outpoint{Txid: itemHash(0x09), Vout: 0}

	it := ordinal.Item{
		ID:          "insc-1",
		Owner:       sellerOwnerAddr,
		Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
		Output:      itemOutpoint,
		OutputValue: 10000,
	}
	item.Put(it)

	sellerScript, _ := sess.Chain.ScriptPubKey(sellerOwnerAddr)
	receiveScript, _ := sess.Chain.ScriptPubKey(buyerReceiveAddr)

	p := buildSignedListingPacket(t, itemOutpoint, sellerScript, 10000, 109000, receiveScript)
	b64 := encodePacket(t, p)

	err := swap.VerifySignedListing(context.Background(), sess, b64, swap.VerifyRequest{
		TokenID:        "insc-WRONG",
		Price:          100000,
		ReceiveAddress: buyerReceiveAddr,
	})
	if err == nil {
		t.Fatalf("expected rejection of mismatched token id")
	}
}

// TestMerge_Determinism_S6 exercises scenario S6: merging the same seller
// and buyer PSBTs twice yields byte-identical output.
func TestMerge_Determinism_S6(t *testing.T) {
	sess, _ := newSwapSession(t, 0)
	itemOutpoint := chainprofile.Outpoint{Txid: itemHash(0x09), Vout: 0}

	sellerScript, _ := sess.Chain.ScriptPubKey(sellerOwnerAddr)
	receiveScript, _ := sess.Chain.ScriptPubKey(buyerReceiveAddr)
	sellerPacket := buildSignedListingPacket(t, itemOutpoint, sellerScript, 10000, 109000, receiveScript)
	sellerB64 := encodePacket(t, sellerPacket)

	bundle, _, _, utxo, _, _ := providerstest.Bundle()
	buyerSess := session.New(chainprofile.Bitcoin(), bundle, config.Config{
		DummyUTXOValue: 600, DummyUTXOMinValue: 580, DummyUTXOMaxValue: 1000, OrdinalsPostageValue: 10000,
	}, nil)
	utxo.Put(buyerReceiveAddr, []providers.AddressTxUTXO{
		{Outpoint: chainprofile.Outpoint{Txid: itemHash(0x01), Vout: 0}, Value: 600, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: itemHash(0x02), Vout: 0}, Value: 600, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: itemHash(0x03), Vout: 0}, Value: 200000, Confirmed: true},
	})

	buyerReq := purchase.Request{
		MakerFeeBP: 100,
		Price:      100000,
		OrdItem: ordinal.Item{
			ID:          "insc-1",
			Owner:       sellerOwnerAddr,
			Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
			Output:      itemOutpoint,
			OutputValue: 10000,
		},
		SellerReceiveAddress: sellerOwnerAddr,
		PaymentAddress:       buyerReceiveAddr,
		TokenReceiveAddress:  buyerReceiveAddr,
		FeeRateTier:          providers.HourFee,
	}
	result, err := purchase.BuildPurchasePSBT(context.Background(), buyerSess, buyerReq)
	if err != nil {
		t.Fatalf("BuildPurchasePSBT: %v", err)
	}

	merged1, err := swap.Merge(sellerB64, result.PSBTBase64)
	if err != nil {
		t.Fatalf("Merge (1st): %v", err)
	}
	merged2, err := swap.Merge(sellerB64, result.PSBTBase64)
	if err != nil {
		t.Fatalf("Merge (2nd): %v", err)
	}
	if merged1 != merged2 {
		t.Fatalf("Merge is not deterministic: %q != %q", merged1, merged2)
	}

	// I1: input index 2 is the seller's ordinal input, and output index 2
	// carries the seller payout, after splicing.
	raw, err := base64.StdEncoding.DecodeString(merged1)
	if err != nil {
		t.Fatalf("decode merged psbt: %v", err)
	}
	merged, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		t.Fatalf("parse merged psbt: %v", err)
	}
	if got := merged.UnsignedTx.TxIn[purchase.BuyingPSBTOrdinalInputIndex].PreviousOutPoint; got != (wire.OutPoint{Hash: itemOutpoint.Txid, Index: itemOutpoint.Vout}) {
		t.Fatalf("merged input[2] previous outpoint = %v, want %v", got, itemOutpoint)
	}
	if got := merged.UnsignedTx.TxOut[purchase.BuyingPSBTSellerOutputIndex].Value; got != 109000 {
		t.Fatalf("merged output[2] = %d, want 109000 (seller payout)", got)
	}
}
