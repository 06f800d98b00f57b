package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
)

// reconcileCategory is where YNAB files unbudgeted inflows; corrections land
// there so they show up for manual budgeting.
const reconcileCategory = "Inflow: To be Budgeted"

// reconcilePayee labels synthesized corrections in the ledger.
const reconcilePayee = "Sync Reconciliation"

// absoluteTolerance is the milli-unit difference above which a correction is
// always posted, regardless of ratio (one whole currency unit).
const absoluteTolerance = 1000

// ratioTolerance is the larger-to-smaller balance ratio above which a
// correction is posted for differences within the absolute tolerance.
const ratioTolerance = 1.01

// ShouldReconcile decides whether the ledger balance needs a correction to
// match the expected balance computed from the provider's report.
//
// Equal balances never reconcile. A zero on either side with any difference
// always does, as does an absolute difference above one currency unit.
// Smaller differences reconcile only when the balances' ratio drifts past
// one percent.
func ShouldReconcile(ledgerBalance, expectedBalance int64) bool {
	if ledgerBalance == expectedBalance {
		return false
	}
	if ledgerBalance == 0 || expectedBalance == 0 {
		return true
	}
	diff := ledgerBalance - expectedBalance
	if diff < 0 {
		diff = -diff
	}
	if diff > absoluteTolerance {
		return true
	}
	ratio := float64(ledgerBalance) / float64(expectedBalance)
	if ratio < 1.0 {
		ratio = 1.0 / ratio
	}
	return ratio > ratioTolerance
}

// Reconciler builds balance-correction transactions.
type Reconciler struct {
	rates RateSource
	now   func() time.Time
}

// NewReconciler creates a reconciler using the given rate source.
func NewReconciler(rates RateSource) *Reconciler {
	return &Reconciler{rates: rates, now: time.Now}
}

// ExpectedBalance converts a provider account's reported balance into the
// budget currency as of now, rounded to the nearest milli-unit.
func (r *Reconciler) ExpectedBalance(account model.Account, budgetCurrency string) (int64, float64, error) {
	rate, err := r.rates.Rate(r.now(), account.Currency, budgetCurrency)
	if err != nil {
		return 0, 0, fmt.Errorf("missing rate for account %s (%s): %w",
			account.DisplayName, account.Currency, err)
	}
	return int64(math.Round(float64(account.Balance) * rate)), rate, nil
}

// Correction synthesizes the single correction transaction that brings the
// ledger balance up to the expected balance.
//
// The id is time-based, so two reconciliations of one account within the
// same second would collide on the import key. Run cadence makes that a
// non-issue in practice and it is left as documented behavior.
func (r *Reconciler) Correction(ledgerBalance, expectedBalance int64, providerBalance int64, rate float64) model.Transaction {
	now := r.now()
	return model.Transaction{
		ID:        "correction_" + strconv.FormatInt(now.Unix(), 10),
		Timestamp: now,
		Amount:    expectedBalance - ledgerBalance,
		Description: fmt.Sprintf("Reconciliation. %v @ %v = %v",
			float64(providerBalance)/1000.0,
			rate,
			float64(expectedBalance)/1000.0),
		Category:  reconcileCategory,
		PayeeName: reconcilePayee,
	}
}
