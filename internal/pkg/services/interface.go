package services

import (
	"context"
	"math/big"

	"meridian/kudos_credit_ledger/internal/pkg/models"
)

// LoanOrchestrator is the surface the HTTP handlers consume.
type LoanOrchestrator interface {
	OpenLoan(ctx context.Context, borrower string, req *models.BorrowRequest) (*models.Loan, error)
	RepayLoan(ctx context.Context, caller string, loanID uint64, amount *big.Int) (*models.RepayReceipt, error)
	DefaultLoan(ctx context.Context, caller string, loanID uint64) error
	LoanStatus(ctx context.Context, loanID uint64) (*models.Loan, *big.Int, error)
	ActiveLoanOf(borrower string) (uint64, bool)
	LockedCollateral(asset string) *big.Int
	BorrowerHistory(ctx context.Context, borrower string) ([]models.LoanArchive, error)
}

// LedgerOperations is the loan lifecycle surface the service layer drives.
type LedgerOperations interface {
	Open(ctx context.Context, borrower string, req *models.BorrowRequest) (uint64, error)
	Repay(ctx context.Context, caller string, loanID uint64, amount *big.Int) (*models.RepayReceipt, error)
	MarkDefault(ctx context.Context, caller string, loanID uint64) error
	GetDebt(ctx context.Context, loanID uint64) *big.Int
	GetLoan(ctx context.Context, loanID uint64) (*models.Loan, error)
	ActiveLoanOf(borrower string) (uint64, bool)
	LockedCollateral(asset string) *big.Int
}

// LoanArchiver persists loan records for reporting.
type LoanArchiver interface {
	Archive(ctx context.Context, record models.LoanArchive) error
	FindByLoanID(ctx context.Context, loanID uint64) (models.LoanArchive, error)
	FindByBorrower(ctx context.Context, borrower string) ([]models.LoanArchive, error)
}

// EventPublisher delivers lifecycle events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}
