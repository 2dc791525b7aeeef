package reputation

import (
	"context"
	"math/big"
)

// Store is the external score-and-badge ledger keyed by borrower address.
// Only hooks mutate it; the credit ledger itself never touches a score.
type Store interface {
	ScoreOf(ctx context.Context, addr string) (uint64, error)
	SetScore(ctx context.Context, addr string, score uint64) error
	HasBadge(ctx context.Context, addr string) (bool, error)
	MintBadge(ctx context.Context, addr string) error
}

// Hook receives loan lifecycle notifications. Hooks run strictly: a hook error
// aborts the ledger operation that triggered it.
type Hook interface {
	OnLoanOpened(ctx context.Context, loanID uint64, borrower string) error
	OnLoanRepaid(ctx context.Context, loanID uint64, borrower string, paid, totalRepaid, totalDebt *big.Int, fullyRepaid bool) error
	OnLoanDefaulted(ctx context.Context, loanID uint64, borrower string) error
}
