// Package providerstest supplies in-memory fakes for every interface in
// providers, so package tests elsewhere in the module can exercise full
// builder/verifier pipelines without a network. The fakes start empty;
// each test seeds the transactions, UTXOs and items it needs.
package providerstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/ordinal"
	"github.com/ordswap/swapengine/providers"
)

// RawTx is a minimal fake record of a transaction's shape, enough to
// answer both GetRawTransaction and GetRawTransactionVerbose.
type RawTx struct {
	Hex           string
	Confirmations int64
	Vin           []providers.VerboseVin
	Vout          []providers.VerboseVout
}

// RPC is an in-memory fake RPCProvider. Zero value is usable; populate
// Txs/PSBTAnalyses/FinalizedHex/MempoolResults/Mempool directly, or Txs
// via PutTx.
type RPC struct {
	mu sync.Mutex

	Txs            map[chainhash.Hash]RawTx
	PSBTAnalyses   map[string]*providers.PSBTAnalysis
	FinalizedHex   map[string]*providers.FinalizedPSBT
	MempoolResults []providers.MempoolAcceptResult
	Mempool        []chainhash.Hash
	SentTxs        []string

	// DefaultAnalysis is returned by AnalyzePSBT when no entry exists in
	// PSBTAnalyses, letting tests that don't care about analysis details
	// skip seeding it per-PSBT.
	DefaultAnalysis *providers.PSBTAnalysis
}

// NewRPC returns an empty fake RPC provider.
func NewRPC() *RPC {
	return &RPC{
		Txs:          make(map[chainhash.Hash]RawTx),
		PSBTAnalyses: make(map[string]*providers.PSBTAnalysis),
		FinalizedHex: make(map[string]*providers.FinalizedPSBT),
		DefaultAnalysis: &providers.PSBTAnalysis{
			Inputs: []providers.PSBTInputAnalysis{{HasUTXO: true, IsFinal: true}},
		},
	}
}

// PutTx seeds a raw transaction keyed by its txid.
func (r *RPC) PutTx(txid chainhash.Hash, tx RawTx) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs[txid] = tx
}

func (r *RPC) GetRawTransaction(ctx context.Context, txid chainhash.Hash) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.Txs[txid]
	if !ok {
		return "", fmt.Errorf("providerstest: no fake tx for %s", txid)
	}
	return tx.Hex, nil
}

func (r *RPC) GetRawTransactionVerbose(ctx context.Context, txid chainhash.Hash) (*providers.VerboseTx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.Txs[txid]
	if !ok {
		return nil, fmt.Errorf("providerstest: no fake tx for %s", txid)
	}
	return &providers.VerboseTx{
		Txid:          txid.String(),
		Hex:           tx.Hex,
		Confirmations: tx.Confirmations,
		Vin:           tx.Vin,
		Vout:          tx.Vout,
	}, nil
}

func (r *RPC) AnalyzePSBT(ctx context.Context, psbtB64 string) (*providers.PSBTAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.PSBTAnalyses[psbtB64]; ok {
		return a, nil
	}
	return r.DefaultAnalysis, nil
}

func (r *RPC) FinalizePSBT(ctx context.Context, psbtB64 string) (*providers.FinalizedPSBT, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.FinalizedHex[psbtB64]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("providerstest: no fake finalize result for given psbt")
}

func (r *RPC) TestMempoolAccept(ctx context.Context, rawTxHex []string) ([]providers.MempoolAcceptResult, error) {
	return r.MempoolResults, nil
}

func (r *RPC) SendRawTransaction(ctx context.Context, rawTxHex string) (chainhash.Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SentTxs = append(r.SentTxs, rawTxHex)
	return chainhash.HashH([]byte(rawTxHex)), nil
}

func (r *RPC) GetRawMempool(ctx context.Context) ([]chainhash.Hash, error) {
	return r.Mempool, nil
}

// Fee is an in-memory fake FeeProvider.
type Fee struct {
	Recommended providers.RecommendedFees
}

// NewFee returns a fake fee provider reporting the given per-tier rates
// uniformly for all four tiers.
func NewFee(satPerVByte int64) *Fee {
	return &Fee{Recommended: providers.RecommendedFees{
		FastestFee: satPerVByte, HalfHourFee: satPerVByte, HourFee: satPerVByte, MinimumFee: satPerVByte,
	}}
}

func (f *Fee) GetFee(ctx context.Context, tier providers.FeeTier) (int64, error) {
	switch tier {
	case providers.FastestFee:
		return f.Recommended.FastestFee, nil
	case providers.HalfHourFee:
		return f.Recommended.HalfHourFee, nil
	case providers.MinimumFee:
		return f.Recommended.MinimumFee, nil
	default:
		return f.Recommended.HourFee, nil
	}
}

func (f *Fee) GetFeesRecommended(ctx context.Context) (*providers.RecommendedFees, error) {
	out := f.Recommended
	return &out, nil
}

// UTXO is an in-memory fake UTXOProvider, keyed by address.
type UTXO struct {
	mu      sync.Mutex
	byAddr  map[string][]providers.AddressTxUTXO
}

// NewUTXO returns an empty fake UTXO provider.
func NewUTXO() *UTXO {
	return &UTXO{byAddr: make(map[string][]providers.AddressTxUTXO)}
}

// Put replaces the UTXO set reported for addr.
func (u *UTXO) Put(addr string, utxos []providers.AddressTxUTXO) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byAddr[addr] = utxos
}

func (u *UTXO) GetAddressUTXOs(ctx context.Context, addr string) ([]providers.AddressTxUTXO, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.byAddr[addr], nil
}

// Item is an in-memory fake ItemProvider, keyed by outpoint and by id.
type Item struct {
	mu       sync.Mutex
	byOutput map[chainprofile.Outpoint]*ordinal.Item
	byID     map[string]*ordinal.Item
}

// NewItem returns an empty fake item provider.
func NewItem() *Item {
	return &Item{
		byOutput: make(map[chainprofile.Outpoint]*ordinal.Item),
		byID:     make(map[string]*ordinal.Item),
	}
}

// Put registers it under both its output outpoint and its id.
func (it *Item) Put(item ordinal.Item) {
	it.mu.Lock()
	defer it.mu.Unlock()
	copyItem := item
	it.byOutput[item.Output] = &copyItem
	it.byID[item.ID] = &copyItem
}

func (it *Item) GetTokenByOutput(ctx context.Context, out chainprofile.Outpoint) (*ordinal.Item, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.byOutput[out], nil
}

func (it *Item) GetTokenByID(ctx context.Context, id string) (*ordinal.Item, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.byID[id], nil
}

// MarketplaceFee is an in-memory fake MarketplaceFeeProvider.
type MarketplaceFee struct {
	MakerBP map[string]uint16
	TakerBP map[string]uint16
}

// NewMarketplaceFee returns an empty fake marketplace-fee provider.
func NewMarketplaceFee() *MarketplaceFee {
	return &MarketplaceFee{MakerBP: make(map[string]uint16), TakerBP: make(map[string]uint16)}
}

func (m *MarketplaceFee) GetMakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	return m.MakerBP[addr], nil
}

func (m *MarketplaceFee) GetTakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	return m.TakerBP[addr], nil
}

// Bundle builds a providers.Bundle from fresh, empty fakes.
func Bundle() (providers.Bundle, *RPC, *Fee, *UTXO, *Item, *MarketplaceFee) {
	rpc := NewRPC()
	fee := NewFee(10)
	utxo := NewUTXO()
	item := NewItem()
	mkt := NewMarketplaceFee()
	return providers.Bundle{RPC: rpc, Fee: fee, UTXO: utxo, Item: item, MarketplaceFee: mkt}, rpc, fee, utxo, item, mkt
}
