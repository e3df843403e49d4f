// Package utxoset implements C2 UtxoClassifier: inscription-taint
// detection, and dummy/payment UTXO selection, consulting the inscription
// indexer and node RPC through a session's provider bundle.
package utxoset

import (
	"github.com/ordswap/swapengine/chainprofile"
)

// UTXO is a fully-resolved unspent output record: outpoint, value,
// confirmation status, and address type. It does not carry the containing
// raw transaction, and none is fetched once a UTXO is chosen as an input:
// package purchase attaches only witness-UTXO data (and, for P2SH, a
// redeem script) to buyer inputs, never non-witness UTXO data.
type UTXO struct {
	Outpoint    chainprofile.Outpoint
	Value       int64
	Confirmed   bool
	AddressType chainprofile.AddressType
}
