package models

import (
	"math/big"
	"time"
)

type LoanStatus string

const (
	LoanStatusNone      LoanStatus = "NONE"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusRepaid    LoanStatus = "REPAID"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
	// Reserved for collateral seizure flows; no current transition produces it.
	LoanStatusLiquidated LoanStatus = "LIQUIDATED"
)

// Loan is a single borrowing position. The ledger is the only writer; everything
// handed out through read accessors is a copy.
type Loan struct {
	ID               uint64
	GUID             string
	Borrower         string
	Asset            string
	CollateralAsset  string
	Principal        *big.Int
	PrincipalRepaid  *big.Int
	CollateralAmount *big.Int
	StartTs          int64
	DueTs            int64
	Status           LoanStatus
}

func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Principal = cloneBig(l.Principal)
	cp.PrincipalRepaid = cloneBig(l.PrincipalRepaid)
	cp.CollateralAmount = cloneBig(l.CollateralAmount)
	return &cp
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// BorrowRequest is the ephemeral input to Open; it is never persisted.
type BorrowRequest struct {
	Asset            string
	Amount           *big.Int
	CollateralAsset  string
	CollateralAmount *big.Int
	Duration         time.Duration
	Proof            []byte
}

// RepayReceipt reports the outcome of a repayment call.
type RepayReceipt struct {
	PaidNet     *big.Int
	TotalRepaid *big.Int
	TotalDebt   *big.Int
	FullyRepaid bool
}
