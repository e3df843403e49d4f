// Package providers defines the external collaborator interfaces the
// engine depends on (§6): node RPC, fee oracle, UTXO indexer, inscription
// indexer, and marketplace fee schedule. Concrete implementations in this
// package talk to real services over HTTP/JSON-RPC; providerstest supplies
// in-memory fakes for tests.
package providers

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ordswap/swapengine/chainprofile"
	"github.com/ordswap/swapengine/ordinal"
)

// VerboseTx is the decoded shape of get_raw_transaction_verbose.
type VerboseTx struct {
	Txid          string
	Hex           string
	BlockHash     string
	BlockTime     int64
	Confirmations int64
	Vin           []VerboseVin
	Vout          []VerboseVout
}

// VerboseVin is one input of a verbose transaction.
type VerboseVin struct {
	Txid     string
	Vout     uint32
	ScriptSig string
	Sequence uint32
	Witness  []string
}

// VerboseVout is one output of a verbose transaction.
type VerboseVout struct {
	Value int64
	N     uint32
}

// PSBTInputAnalysis is the per-input entry of analyze_psbt.
type PSBTInputAnalysis struct {
	HasUTXO bool
	IsFinal bool
	Next    string
}

// PSBTAnalysis is the decoded shape of analyze_psbt.
type PSBTAnalysis struct {
	Inputs []PSBTInputAnalysis
	Next   string
}

// FinalizedPSBT is the decoded shape of finalize_psbt.
type FinalizedPSBT struct {
	Hex      string
	Complete bool
}

// MempoolAcceptResult is one entry of test_mempool_accept.
type MempoolAcceptResult struct {
	Txid         string
	Wtxid        string
	Allowed      bool
	VSize        int64
	BaseFee      int64
	RejectReason string
}

// RPCProvider is the node-level external collaborator (§6).
type RPCProvider interface {
	GetRawTransaction(ctx context.Context, txid chainhash.Hash) (string, error)
	GetRawTransactionVerbose(ctx context.Context, txid chainhash.Hash) (*VerboseTx, error)
	AnalyzePSBT(ctx context.Context, psbtB64 string) (*PSBTAnalysis, error)
	FinalizePSBT(ctx context.Context, psbtB64 string) (*FinalizedPSBT, error)
	TestMempoolAccept(ctx context.Context, rawTxHex []string) ([]MempoolAcceptResult, error)
	SendRawTransaction(ctx context.Context, rawTxHex string) (chainhash.Hash, error)
	GetRawMempool(ctx context.Context) ([]chainhash.Hash, error)
}

// FeeTier is one of the four recognized fee tiers; an unrecognized tier
// string defaults to HourFee per §6.
type FeeTier string

const (
	FastestFee  FeeTier = "fastestFee"
	HalfHourFee FeeTier = "halfHourFee"
	HourFee     FeeTier = "hourFee"
	MinimumFee  FeeTier = "minimumFee"
)

// RecommendedFees is the decoded shape of get_fees_recommended.
type RecommendedFees struct {
	FastestFee  int64
	HalfHourFee int64
	HourFee     int64
	MinimumFee  int64
}

// FeeProvider is the fee-oracle external collaborator (§6).
type FeeProvider interface {
	GetFee(ctx context.Context, tier FeeTier) (satPerVByte int64, err error)
	GetFeesRecommended(ctx context.Context) (*RecommendedFees, error)
}

// AddressTxUTXO is one entry returned by an address UTXO indexer.
type AddressTxUTXO struct {
	Outpoint  chainprofile.Outpoint
	Value     int64
	Confirmed bool
}

// UTXOProvider is the address-indexer external collaborator (§6).
type UTXOProvider interface {
	GetAddressUTXOs(ctx context.Context, addr string) ([]AddressTxUTXO, error)
}

// ItemProvider is the inscription-indexer external collaborator (§6).
type ItemProvider interface {
	GetTokenByOutput(ctx context.Context, out chainprofile.Outpoint) (*ordinal.Item, error)
	GetTokenByID(ctx context.Context, id string) (*ordinal.Item, error)
}

// MarketplaceFeeProvider is the optional marketplace-fee external
// collaborator (§6). A nil MarketplaceFeeProvider on a Bundle is treated
// as "0 bp" everywhere it is consulted.
type MarketplaceFeeProvider interface {
	GetMakerFeeBP(ctx context.Context, addr string) (uint16, error)
	GetTakerFeeBP(ctx context.Context, addr string) (uint16, error)
}

// Bundle groups the five provider roles a Session depends on.
type Bundle struct {
	RPC            RPCProvider
	Fee            FeeProvider
	UTXO           UTXOProvider
	Item           ItemProvider
	MarketplaceFee MarketplaceFeeProvider // optional, may be nil
}

// MakerFeeBP returns the maker fee in basis points for addr, treating a
// nil MarketplaceFee provider as 0 bp.
func (b Bundle) MakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	if b.MarketplaceFee == nil {
		return 0, nil
	}
	return b.MarketplaceFee.GetMakerFeeBP(ctx, addr)
}

// TakerFeeBP returns the taker fee in basis points for addr, treating a
// nil MarketplaceFee provider as 0 bp.
func (b Bundle) TakerFeeBP(ctx context.Context, addr string) (uint16, error) {
	if b.MarketplaceFee == nil {
		return 0, nil
	}
	return b.MarketplaceFee.GetTakerFeeBP(ctx, addr)
}
