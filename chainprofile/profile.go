// Package chainprofile implements C1 ChainProfile: per-chain address
// prefixes, segwit/taproot capability flags, dust and fee-rate floors, and
// the address classifier every other component relies on to reason about
// a closed AddressType enum instead of string prefixes.
package chainprofile

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/txscript"
)

// Profile is an immutable record of a single chain's address and fee
// parameters, generalized to an arbitrary Bitcoin-family UTXO chain
// instead of one hardcoded network.
type Profile struct {
	Name   string
	Symbol string

	// PubKeyHashPrefix / ScriptHashPrefix are the base58check version
	// bytes for legacy P2PKH / P2SH addresses.
	PubKeyHashPrefix byte
	ScriptHashPrefix byte

	// Bech32HRP is the bech32/bech32m human-readable part. An empty HRP
	// disables segwit and taproot entirely for this chain.
	Bech32HRP string

	SupportsSegwit   bool
	SupportsTaproot  bool
	DustLimitSats    int64
	MinFeeRateSatVB  int64
}

// New validates and returns a Profile. An empty Bech32HRP forces both
// capability flags false.
func New(p Profile) (*Profile, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("chainprofile: name is required")
	}
	if p.Bech32HRP == "" {
		p.SupportsSegwit = false
		p.SupportsTaproot = false
	}
	if p.DustLimitSats <= 0 {
		return nil, fmt.Errorf("chainprofile: %s: dust limit must be positive", p.Name)
	}
	out := p
	return &out, nil
}

// DustLimit returns the chain's dust threshold in satoshis.
func (p *Profile) DustLimit() int64 { return p.DustLimitSats }

// MinFeeRate returns the chain's minimum relay fee rate in sat/vbyte.
func (p *Profile) MinFeeRate() int64 { return p.MinFeeRateSatVB }

// decoded is the shared result of parsing an address string: its type and
// the payload bytes a script builder needs (a 20-byte hash160 for
// P2PKH/P2SH/P2WPKH, a 32-byte witness program for P2WSH/P2TR).
type decoded struct {
	Type    AddressType
	Payload []byte
}

func (p *Profile) decode(addr string) decoded {
	if payload, version, err := base58.CheckDecode(addr); err == nil {
		if len(payload) == 20 {
			switch version {
			case p.PubKeyHashPrefix:
				return decoded{P2PKH, payload}
			case p.ScriptHashPrefix:
				return decoded{P2SH, payload}
			}
		}
	}

	if p.Bech32HRP == "" {
		return decoded{Unknown, nil}
	}

	hrp, data, enc, err := bech32.DecodeGeneric(addr)
	if err != nil || !strings.EqualFold(hrp, p.Bech32HRP) || len(data) == 0 {
		return decoded{Unknown, nil}
	}

	witnessVersion := data[0]
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return decoded{Unknown, nil}
	}

	switch witnessVersion {
	case 0:
		if !p.SupportsSegwit || enc != bech32.Bech32 {
			return decoded{Unknown, nil}
		}
		switch len(program) {
		case 20:
			return decoded{P2WPKH, program}
		case 32:
			return decoded{P2WSH, program}
		}
	case 1:
		if !p.SupportsTaproot || enc != bech32.Bech32m || len(program) != 32 {
			return decoded{Unknown, nil}
		}
		return decoded{P2TR, program}
	}

	return decoded{Unknown, nil}
}

// ClassifyAddress implements §4.1: attempt base58check decoding first,
// then bech32/bech32m constrained to this chain's HRP.
func (p *Profile) ClassifyAddress(addr string) (AddressType, error) {
	return p.decode(addr).Type, nil
}

// IsValidAddress reports whether addr classifies to anything but Unknown.
func (p *Profile) IsValidAddress(addr string) bool {
	t, err := p.ClassifyAddress(addr)
	return err == nil && t != Unknown
}

// ScriptPubKey builds the scriptPubKey for addr under this chain's
// parameters, used in place of a chaincfg.Params-bound
// btcutil.DecodeAddress/txscript.PayToAddrScript pairing so that chains
// with no chaincfg.Params registry entry — such as a legacy chain like
// Junkcoin — are still supported.
func (p *Profile) ScriptPubKey(addr string) ([]byte, error) {
	d := p.decode(addr)
	switch d.Type {
	case P2PKH:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_DUP).
			AddOp(txscript.OP_HASH160).
			AddData(d.Payload).
			AddOp(txscript.OP_EQUALVERIFY).
			AddOp(txscript.OP_CHECKSIG).
			Script()
	case P2SH:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_HASH160).
			AddData(d.Payload).
			AddOp(txscript.OP_EQUAL).
			Script()
	case P2WPKH, P2WSH:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_0).
			AddData(d.Payload).
			Script()
	case P2TR:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_1).
			AddData(d.Payload).
			Script()
	default:
		return nil, fmt.Errorf("chainprofile: address %q does not classify to a known type on chain %s", addr, p.Name)
	}
}

// AddressFromScript is the inverse of ScriptPubKey: given a previous
// output's pkScript, recover the address that can spend it under this
// chain's parameters. Used by package swap to check seller authenticity
// (the previous output spent by a listing input must belong to the item's
// recorded owner).
func (p *Profile) AddressFromScript(script []byte) (string, error) {
	switch {
	case txscript.IsPayToPubKeyHash(script) && len(script) == 25:
		return base58.CheckEncode(script[3:23], p.PubKeyHashPrefix), nil
	case txscript.IsPayToScriptHash(script) && len(script) == 23:
		return base58.CheckEncode(script[2:22], p.ScriptHashPrefix), nil
	case txscript.IsPayToWitnessPubKeyHash(script) && len(script) == 22:
		return encodeBech32(p.Bech32HRP, 0, script[2:22], bech32.Bech32)
	case txscript.IsPayToWitnessScriptHash(script) && len(script) == 34:
		return encodeBech32(p.Bech32HRP, 0, script[2:34], bech32.Bech32)
	case txscript.IsPayToTaproot(script) && len(script) == 34:
		return encodeBech32(p.Bech32HRP, 1, script[2:34], bech32.Bech32m)
	default:
		return "", fmt.Errorf("chainprofile: unsupported script type for address recovery")
	}
}

func encodeBech32(hrp string, witnessVersion byte, program []byte, enc bech32.Encoding) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("chainprofile: chain does not support segwit addresses")
	}
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("chainprofile: converting witness program bits: %w", err)
	}
	data := append([]byte{witnessVersion}, converted...)
	switch enc {
	case bech32.Bech32m:
		return bech32.EncodeM(hrp, data)
	default:
		return bech32.Encode(hrp, data)
	}
}
