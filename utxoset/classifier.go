package utxoset

import (
	"context"

	"github.com/ordswap/swapengine/session"
	"github.com/ordswap/swapengine/swaperr"
)

// Classifier answers contains_inscription and performs dummy/payment UTXO
// selection against a session's providers (§4.2).
type Classifier struct {
	sess *session.Session
}

// New returns a Classifier bound to sess.
func New(sess *session.Session) *Classifier {
	return &Classifier{sess: sess}
}

// ContainsInscription implements the fail-closed policy of §4.2: any
// provider error, any inscription found on a confirmed UTXO, and, for an
// unconfirmed UTXO, any unconfirmed parent transaction or any inscription
// on an output its transaction spends, is treated as tainted.
func (c *Classifier) ContainsInscription(ctx context.Context, u UTXO) (bool, error) {
	items := c.sess.Providers.Item

	if u.Confirmed {
		item, err := items.GetTokenByOutput(ctx, u.Outpoint)
		if err != nil {
			c.sess.Logger.Warn("inscription indexer error on confirmed utxo, treating as tainted", "outpoint", u.Outpoint.String(), "error", err)
			return true, nil
		}
		return item != nil, nil
	}

	vtx, err := c.sess.Providers.RPC.GetRawTransactionVerbose(ctx, u.Outpoint.Txid)
	if err != nil {
		return true, nil
	}

	for _, in := range vtx.Vin {
		prevTxid, err := parseTxidHex(in.Txid)
		if err != nil {
			return true, nil
		}
		prevTx, err := c.sess.Providers.RPC.GetRawTransactionVerbose(ctx, prevTxid)
		if err != nil {
			return true, nil
		}
		if prevTx.Confirmations == 0 {
			return true, nil
		}

		prevOut := outpointFor(prevTxid, in.Vout)
		item, err := items.GetTokenByOutput(ctx, prevOut)
		if err != nil || item != nil {
			return true, nil
		}
	}

	return false, nil
}

// SelectDummyUTXOs scans utxos in order and returns the first two that
// carry no inscription and fall within [DummyUTXOMinValue,
// DummyUTXOMaxValue]. It returns ok=false if fewer than two qualify; err
// is then a *swaperr.Error with Tainted set if any in-range candidate was
// skipped for carrying an inscription, and nil otherwise.
func (c *Classifier) SelectDummyUTXOs(ctx context.Context, utxos []UTXO) (first, second UTXO, ok bool, err error) {
	cfg := c.sess.Config
	var found []UTXO
	var anyTainted bool

	for _, u := range utxos {
		if u.Value < cfg.DummyUTXOMinValue || u.Value > cfg.DummyUTXOMaxValue {
			continue
		}
		tainted, cErr := c.ContainsInscription(ctx, u)
		if cErr != nil {
			return UTXO{}, UTXO{}, false, cErr
		}
		if tainted {
			anyTainted = true
			continue
		}
		found = append(found, u)
		if len(found) == 2 {
			return found[0], found[1], true, nil
		}
	}

	if anyTainted {
		return UTXO{}, UTXO{}, false, swaperr.Tainted(int64(len(found)), 2,
			"utxoset: insufficient non-tainted dummy utxos in [%d,%d]: have %d, need 2", cfg.DummyUTXOMinValue, cfg.DummyUTXOMaxValue, len(found))
	}
	return UTXO{}, UTXO{}, false, nil
}

// SelectPaymentUTXOs implements §4.2's select_payment_utxos: filter out
// anything at or below the dummy value (protecting future dummies), sort
// descending by value, accumulate until the running sum covers amount
// plus the estimated fee for the growing input count, skipping any
// inscription-bearing UTXO. The returned error, on exhaustion, is a
// *swaperr.Error with Tainted set if any skipped candidate would have
// helped meet the target (so the shortfall is partly a taint artifact,
// not a plain lack of funds).
func (c *Classifier) SelectPaymentUTXOs(ctx context.Context, utxos []UTXO, amount int64, baseVins, baseVouts int, feeRateSatVB int64) ([]UTXO, int64, error) {
	cfg := c.sess.Config

	candidates := make([]UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u.Value > cfg.DummyUTXOValue {
			candidates = append(candidates, u)
		}
	}
	sortDescendingByValue(candidates)

	var selected []UTXO
	var total int64
	var fee int64
	var anyTainted bool

	for _, u := range candidates {
		tainted, err := c.ContainsInscription(ctx, u)
		if err != nil {
			return nil, 0, err
		}
		if tainted {
			anyTainted = true
			continue
		}

		selected = append(selected, u)
		total += u.Value
		fee = EstimateFee(baseVins+len(selected), baseVouts, feeRateSatVB)

		if total >= amount+fee {
			return selected, fee, nil
		}
	}

	need := amount + fee
	if anyTainted {
		return nil, 0, swaperr.Tainted(total, need, "utxoset: insufficient non-tainted funds: have %d, need %d (amount %d + fee %d)", total, need, amount, fee)
	}
	return nil, 0, swaperr.InsufficientFundsf(total, need, "utxoset: insufficient funds: have %d, need %d (amount %d + fee %d)", total, need, amount, fee)
}

func sortDescendingByValue(utxos []UTXO) {
	for i := 1; i < len(utxos); i++ {
		for j := i; j > 0 && utxos[j].Value > utxos[j-1].Value; j-- {
			utxos[j], utxos[j-1] = utxos[j-1], utxos[j]
		}
	}
}
