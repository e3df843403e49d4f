package listing_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/config"
	"github.com/ordswap/swapengine/listing"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers/providerstest"
	"github.com/ordswap/swapengine/session"
)

// bitcoinReceiveAddr is the BIP173 P2WPKH mainnet test vector address.
const bitcoinReceiveAddr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func encodeParentTxHex(t *testing.T, outputValue int64) (string, chainhash.Hash) {
	t.Helper()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: chainhash.Hash{0xAA}, Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(outputValue, []byte{0x00, 0x14, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("serialize parent tx: %v", err)
	}
	return hex.EncodeToString(buf.Bytes()), tx.TxHash()
}

// TestBuildListingPSBT_SellerPayout_S1 exercises scenario S1's seller-side
// payout arithmetic: price=100000, maker_fee_bp=100, output_value=10000 =>
// payout = 109000.
func TestBuildListingPSBT_SellerPayout_S1(t *testing.T) {
	parentHex, _ := encodeParentTxHex(t, 10000)
	parentTx := wire.NewMsgTx(2)
	raw, _ := hex.DecodeString(parentHex)
	if err := parentTx.Deserialize(bytes.NewReader(raw)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	parentTxid := parentTx.TxHash()

	bundle, rpc, _, _, _, _ := providerstest.Bundle()
	rpc.PutTx(parentTxid, providerstest.RawTx{Hex: parentHex, Confirmations: 6})

	sess := session.New(chainprofile.Bitcoin(), bundle, config.Config{}, nil)

	req := listing.Request{
		MakerFeeBP: 100,
		OrdItem: ordinal.Item{
			ID:          "insc-1",
			Owner:       "owner",
			Location:    ordinal.Location{Txid: chainprofile.Outpoint{Txid: parentTxid, Vout: 0}, Offset: 0},
			Output:      chainprofile.Outpoint{Txid: parentTxid, Vout: 0},
			OutputValue: 10000,
		},
		ReceiveAddress: bitcoinReceiveAddr,
	}

	result, err := listing.BuildListingPSBT(context.Background(), sess, req, 100000)
	if err != nil {
		t.Fatalf("BuildListingPSBT: %v", err)
	}
	if result.Payout != 109000 {
		t.Fatalf("payout = %d, want 109000", result.Payout)
	}
	if _, err := base64.StdEncoding.DecodeString(result.PSBTBase64); err != nil {
		t.Fatalf("PSBTBase64 not valid base64: %v", err)
	}
}

func TestSellerPayout(t *testing.T) {
	cases := []struct {
		name            string
		price           int64
		makerFeeBP      uint16
		outputValue     int64
		want            int64
	}{
		{"S1", 100000, 100, 10000, 109000},
		{"S2", 100000000, 100, 10000, 99010000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := listing.SellerPayout(tc.price, tc.makerFeeBP, tc.outputValue)
			if got != tc.want {
				t.Fatalf("SellerPayout(%d,%d,%d) = %d, want %d", tc.price, tc.makerFeeBP, tc.outputValue, got, tc.want)
			}
		})
	}
}
