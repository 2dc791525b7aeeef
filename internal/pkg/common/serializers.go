package common

import (
	"math/big"
	"time"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/models"
)

// FormatAmount renders a ledger amount as a decimal string. Nil is zero.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// ParseAmount parses a non-negative decimal string into a ledger amount.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, consts.ErrInvalidAmount
	}
	return v, nil
}

func SerializeLoanArchive(loan *models.Loan) models.LoanArchive {
	return models.LoanArchive{
		LoanID:           loan.ID,
		GUID:             loan.GUID,
		Borrower:         loan.Borrower,
		Asset:            loan.Asset,
		CollateralAsset:  loan.CollateralAsset,
		Principal:        FormatAmount(loan.Principal),
		PrincipalRepaid:  FormatAmount(loan.PrincipalRepaid),
		CollateralAmount: FormatAmount(loan.CollateralAmount),
		StartTs:          loan.StartTs,
		DueTs:            loan.DueTs,
		Status:           loan.Status,
		ArchivedAt:       time.Now(),
	}
}

// SerializeLoanEvent builds the published event for a lifecycle transition.
// The receipt is only present for repayments.
func SerializeLoanEvent(eventType models.LoanEventType, loan *models.Loan, receipt *models.RepayReceipt) models.LoanEvent {
	event := models.LoanEvent{
		Type:      eventType,
		LoanID:    loan.ID,
		GUID:      loan.GUID,
		Borrower:  loan.Borrower,
		Asset:     loan.Asset,
		Amount:    FormatAmount(loan.Principal),
		Timestamp: time.Now(),
	}
	if receipt != nil {
		event.Amount = FormatAmount(receipt.PaidNet)
		event.TotalRepaid = FormatAmount(receipt.TotalRepaid)
		event.TotalDebt = FormatAmount(receipt.TotalDebt)
		event.FullyRepaid = receipt.FullyRepaid
	}
	return event
}
