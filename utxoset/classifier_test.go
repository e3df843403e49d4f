package utxoset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/config"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers"
	"github.com/ordswap/swapengine/providers/providerstest"
	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swaperr"
	"github.com/ordswap/swapengine/utxoset"
)

func mustHash(t *testing.T, b byte) chainhash.Hash {
	t.Helper()
	var h chainhash.Hash
	h[0] = b
	return h
}

func newTestSession(t *testing.T) (*session.Session, *providerstest.RPC, *providerstest.Item) {
	t.Helper()
	bundle, rpc, _, _, item, _ := providerstest.Bundle()
	cfg := config.Config{DummyUTXOValue: 600, DummyUTXOMinValue: 580, DummyUTXOMaxValue: 1000}
	return session.New(chainprofile.Bitcoin(), bundle, cfg, nil), rpc, item
}

// TestSelectDummyUTXOs_InscriptionTaintGuard is scenario S3.
func TestSelectDummyUTXOs_InscriptionTaintGuard(t *testing.T) {
	sess, rpc, item := newTestSession(t)

	taintedParentTxid := mustHash(t, 0x01)
	unconfirmedTxid := mustHash(t, 0x02)
	cleanTxid := mustHash(t, 0x03)
	largeTxid := mustHash(t, 0x04)

	// Unconfirmed output at unconfirmedTxid:0 whose single input spends a
	// CONFIRMED parent (taintedParentTxid:0) that the indexer reports as
	// carrying an inscription.
	rpc.PutTx(unconfirmedTxid, providerstest.RawTx{
		Confirmations: 0,
		Vin:           []providers.VerboseVin{{Txid: taintedParentTxid.String(), Vout: 0}},
	})
	rpc.PutTx(taintedParentTxid, providerstest.RawTx{Confirmations: 6})
	item.Put(ordinal.Item{
		ID:          "inscription-1",
		Owner:       "owner",
		Location:    ordinal.Location{Txid: chainprofile.Outpoint{Txid: taintedParentTxid, Vout: 0}, Offset: 0},
		Output:      chainprofile.Outpoint{Txid: taintedParentTxid, Vout: 0},
		OutputValue: 700,
	})

	utxos := []utxoset.UTXO{
		{Outpoint: chainprofile.Outpoint{Txid: unconfirmedTxid, Vout: 0}, Value: 700, Confirmed: false},
		{Outpoint: chainprofile.Outpoint{Txid: cleanTxid, Vout: 0}, Value: 700, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: largeTxid, Vout: 0}, Value: 50000, Confirmed: true},
	}

	c := utxoset.New(sess)
	first, second, ok, err := c.SelectDummyUTXOs(context.Background(), utxos)
	if ok {
		t.Fatalf("expected ok=false: only one valid dummy candidate exists, got first=%v second=%v", first, second)
	}
	if err == nil {
		t.Fatalf("expected a tainted insufficient-funds error: one in-range candidate was skipped for carrying an inscription")
	}
	if !swaperr.Of(err, swaperr.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	var swapErr *swaperr.Error
	if !errors.As(err, &swapErr) || !swapErr.Tainted {
		t.Fatalf("expected Tainted=true, got %v", err)
	}
}

// TestContainsInscription_ConfirmedWithoutRecordIsClean checks that a
// confirmed UTXO for which the indexer returns no record is not tainted.
func TestContainsInscription_ConfirmedWithoutRecordIsClean(t *testing.T) {
	sess, _, item := newTestSession(t)
	_ = item // no entry seeded; GetTokenByOutput on an unseeded item map returns (nil, nil), not an error

	u := utxoset.UTXO{Outpoint: chainprofile.Outpoint{Txid: mustHash(t, 0x09), Vout: 0}, Value: 50000, Confirmed: true}
	c := utxoset.New(sess)
	tainted, err := c.ContainsInscription(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tainted {
		t.Fatalf("expected untainted: indexer has no record for this outpoint")
	}
}

func TestSelectPaymentUTXOs_InsufficientFunds(t *testing.T) {
	sess, _, _ := newTestSession(t)
	c := utxoset.New(sess)

	utxos := []utxoset.UTXO{
		{Outpoint: chainprofile.Outpoint{Txid: mustHash(t, 0x11), Vout: 0}, Value: 30000, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: mustHash(t, 0x12), Vout: 0}, Value: 20000, Confirmed: true},
	}

	_, _, err := c.SelectPaymentUTXOs(context.Background(), utxos, 100000, 1, 4, 10)
	if !swaperr.Of(err, swaperr.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	var swapErr *swaperr.Error
	if !errors.As(err, &swapErr) || swapErr.Tainted {
		t.Fatalf("expected Tainted=false: no candidate carried an inscription, got %v", err)
	}
}

// TestSelectPaymentUTXOs_TaintedInsufficientFunds exercises the Tainted
// branch: a large enough candidate is skipped for carrying an
// inscription, so the shortfall is a taint artifact rather than a plain
// lack of funds.
func TestSelectPaymentUTXOs_TaintedInsufficientFunds(t *testing.T) {
	sess, _, item := newTestSession(t)
	c := utxoset.New(sess)

	taintedTxid := mustHash(t, 0x21)
	item.Put(ordinal.Item{
		ID:          "inscription-2",
		Owner:       "owner",
		Location:    ordinal.Location{Txid: chainprofile.Outpoint{Txid: taintedTxid, Vout: 0}, Offset: 0},
		Output:      chainprofile.Outpoint{Txid: taintedTxid, Vout: 0},
		OutputValue: 90000,
	})

	utxos := []utxoset.UTXO{
		{Outpoint: chainprofile.Outpoint{Txid: taintedTxid, Vout: 0}, Value: 90000, Confirmed: true},
		{Outpoint: chainprofile.Outpoint{Txid: mustHash(t, 0x22), Vout: 0}, Value: 20000, Confirmed: true},
	}

	_, _, err := c.SelectPaymentUTXOs(context.Background(), utxos, 100000, 1, 4, 10)
	if !swaperr.Of(err, swaperr.InsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	var swapErr *swaperr.Error
	if !errors.As(err, &swapErr) || !swapErr.Tainted {
		t.Fatalf("expected Tainted=true: the 90000-sat candidate was skipped for carrying an inscription, got %v", err)
	}
}
