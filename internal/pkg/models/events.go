package models

import "time"

type LoanEventType string

const (
	LoanOpenedEvent    LoanEventType = "loan.opened"
	LoanRepaidEvent    LoanEventType = "loan.repaid"
	LoanDefaultedEvent LoanEventType = "loan.defaulted"
)

// LoanEvent is the wire shape published to Kafka after a ledger operation
// commits. Amounts travel as decimal strings.
type LoanEvent struct {
	Type        LoanEventType `json:"type"`
	LoanID      uint64        `json:"loanId"`
	GUID        string        `json:"guid"`
	Borrower    string        `json:"borrower"`
	Asset       string        `json:"asset"`
	Amount      string        `json:"amount,omitempty"`
	TotalRepaid string        `json:"totalRepaid,omitempty"`
	TotalDebt   string        `json:"totalDebt,omitempty"`
	FullyRepaid bool          `json:"fullyRepaid,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
