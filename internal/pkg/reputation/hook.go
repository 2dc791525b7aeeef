package reputation

import (
	"context"
	"math/big"

	"meridian/kudos_credit_ledger/internal/pkg/logger"
)

// ScoreHook is the default lifecycle hook: it credits score points when a loan
// is fully repaid and mints the permanent default badge when one defaults.
// Partial repayments and openings leave the score untouched.
type ScoreHook struct {
	store       Store
	repayPoints uint64
}

func NewScoreHook(store Store, repayPoints uint64) *ScoreHook {
	return &ScoreHook{
		store:       store,
		repayPoints: repayPoints,
	}
}

func (h *ScoreHook) OnLoanOpened(ctx context.Context, loanID uint64, borrower string) error {
	logger.Debug(ctx, "loan %d opened for %s", loanID, borrower)
	return nil
}

func (h *ScoreHook) OnLoanRepaid(ctx context.Context, loanID uint64, borrower string, paid, totalRepaid, totalDebt *big.Int, fullyRepaid bool) error {
	if !fullyRepaid {
		return nil
	}

	score, err := h.store.ScoreOf(ctx, borrower)
	if err != nil {
		return err
	}
	if err := h.store.SetScore(ctx, borrower, score+h.repayPoints); err != nil {
		return err
	}

	logger.Info(ctx, "loan %d fully repaid, score of %s raised to %d", loanID, borrower, score+h.repayPoints)
	return nil
}

func (h *ScoreHook) OnLoanDefaulted(ctx context.Context, loanID uint64, borrower string) error {
	if err := h.store.MintBadge(ctx, borrower); err != nil {
		return err
	}

	logger.Warn(ctx, "loan %d defaulted, badge minted for %s", loanID, borrower)
	return nil
}
