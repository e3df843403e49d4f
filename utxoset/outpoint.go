package utxoset

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ordswap/swapengine/chainprofile"
)

func parseTxidHex(s string) (chainhash.Hash, error) {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return *h, nil
}

func outpointFor(txid chainhash.Hash, vout uint32) chainprofile.Outpoint {
	return chainprofile.Outpoint{Txid: txid, Vout: vout}
}
