// swapctl is a minimal demo command wiring Session and the providerstest
// fakes end-to-end. It is not a spec component: it exists only so the
// library has a runnable entry point for manual inspection of the seller
// and buyer halves of scenario S1, which the engine's test suite also
// exercises.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/config"
	"github.com/ordswap/swapengine/listing"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers"
	"github.com/ordswap/swapengine/providers/providerstest"
	"github.com/ordswap/swapengine/purchase"
	"github.com/ordswap/swapengine/session"
)

const (
	sellerAddr  = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	buyerAddr   = "bc1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3qccfmv3"
	inscription = "demo-inscription-1"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: swapctl <list|buy>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		runList()
	case "buy":
		runBuy()
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(1)
	}
}

// seedHash builds a throwaway txid for the demo scenario, distinguished
// only by its first byte.
func seedHash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

// parentTxHex serializes a single-output transaction paying value sats,
// standing in for the inscription's parent transaction that a real
// indexer would return from getrawtransaction.
func parentTxHex(script []byte, value int64) string {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: seedHash(0xFF), Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, script))
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf.Bytes())
}

// runList demonstrates the seller half of scenario S1: a 100,000-sat
// listing with a 1% maker fee against a 10,000-sat postage item.
func runList() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	bundle, rpc, _, _, _, _ := providerstest.Bundle()
	sess := session.New(chainprofile.Bitcoin(), bundle, *cfg, nil)

	parentTxid := seedHash(0x09)
	sellerScript, err := sess.Chain.ScriptPubKey(sellerAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seller scriptPubKey: %v\n", err)
		os.Exit(1)
	}
	rpc.PutTx(parentTxid, providerstest.RawTx{Hex: parentTxHex(sellerScript, 10000), Confirmations: 6})

	itemOutpoint := chainprofile.Outpoint{Txid: parentTxid, Vout: 0}
	req := listing.Request{
		MakerFeeBP: 100,
		OrdItem: ordinal.Item{
			ID:          inscription,
			Owner:       sellerAddr,
			Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
			Output:      itemOutpoint,
			OutputValue: 10000,
		},
		ReceiveAddress: sellerAddr,
	}

	result, err := listing.BuildListingPSBT(context.Background(), sess, req, 100000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building listing psbt: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seller payout: %d sats\n", result.Payout)
	fmt.Printf("listing psbt (base64): %s\n", result.PSBTBase64)
}

// runBuy demonstrates the buyer half of scenario S1 against a payment
// address funded with two dummies and one large payment UTXO.
func runBuy() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	bundle, _, _, utxo, _, _ := providerstest.Bundle()
	sess := session.New(chainprofile.Bitcoin(), bundle, *cfg, nil)

	utxo.Put(buyerAddr, []providers.AddressTxUTXO{
		{Outpoint: chainprofile.Outpoint{Txid: seedHash(0x01), Vout: 0}, Value: 600, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: seedHash(0x02), Vout: 0}, Value: 600, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: seedHash(0x03), Vout: 0}, Value: 200000, Confirmed: true},
	})

	itemOutpoint := chainprofile.Outpoint{Txid: seedHash(0x09), Vout: 0}
	req := purchase.Request{
		TakerFeeBP: 200,
		MakerFeeBP: 100,
		Price:      100000,
		OrdItem: ordinal.Item{
			ID:          inscription,
			Owner:       sellerAddr,
			Location:    ordinal.Location{Txid: itemOutpoint, Offset: 0},
			Output:      itemOutpoint,
			OutputValue: 10000,
		},
		SellerReceiveAddress: sellerAddr,
		PaymentAddress:       buyerAddr,
		TokenReceiveAddress:  buyerAddr,
		FeeRateTier:          providers.HourFee,
	}

	result, err := purchase.BuildPurchasePSBT(context.Background(), sess, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building purchase psbt: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seller payout: %d sats\n", result.SellerPayout)
	fmt.Printf("platform fee: %d sats\n", result.PlatformFee)
	fmt.Printf("network fee: %d sats\n", result.Fee)
	fmt.Printf("change: %d sats\n", result.ChangeAmount)
	fmt.Printf("purchase psbt (base64): %s\n", result.PSBTBase64)
}
