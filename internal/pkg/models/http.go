package models

// Request and response shapes for the HTTP surface. Amounts are decimal
// strings end to end.

type OpenLoanRequest struct {
	Borrower         string `json:"borrower" validate:"required,account_id"`
	Asset            string `json:"asset" validate:"required,asset_id"`
	Amount           string `json:"amount" validate:"required"`
	CollateralAsset  string `json:"collateralAsset" validate:"omitempty,asset_id"`
	CollateralAmount string `json:"collateralAmount"`
	DurationSeconds  int64  `json:"durationSeconds" validate:"required,gt=0"`
	Proof            string `json:"proof"`
}

type RepayLoanRequest struct {
	Caller string `json:"caller" validate:"required,account_id"`
	Amount string `json:"amount" validate:"required"`
}

type DefaultLoanRequest struct {
	Caller string `json:"caller" validate:"omitempty,account_id"`
}

type SetPausedRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

type SetFeesRequest struct {
	OriginationFeeBps uint64 `json:"originationFeeBps"`
	ProtocolFeeBps    uint64 `json:"protocolFeeBps"`
	BountyBps         uint64 `json:"bountyBps"`
}

type SetInterestModelRequest struct {
	AprBps        uint64 `json:"aprBps"`
	PenaltyAprBps uint64 `json:"penaltyAprBps"`
}

type SetDurationBoundsRequest struct {
	MinDurationSeconds int64 `json:"minDurationSeconds" validate:"required,gt=0"`
	MaxDurationSeconds int64 `json:"maxDurationSeconds" validate:"required,gtefield=MinDurationSeconds"`
	GracePeriodSeconds int64 `json:"gracePeriodSeconds" validate:"gte=0"`
}

type LoanResponse struct {
	LoanID           uint64     `json:"loanId"`
	GUID             string     `json:"guid"`
	Borrower         string     `json:"borrower"`
	Asset            string     `json:"asset"`
	CollateralAsset  string     `json:"collateralAsset,omitempty"`
	Principal        string     `json:"principal"`
	PrincipalRepaid  string     `json:"principalRepaid"`
	CollateralAmount string     `json:"collateralAmount"`
	StartTs          int64      `json:"startTs"`
	DueTs            int64      `json:"dueTs"`
	Status           LoanStatus `json:"status"`
	Debt             string     `json:"debt,omitempty"`
}

type RepayResponse struct {
	PaidNet     string `json:"paidNet"`
	TotalRepaid string `json:"totalRepaid"`
	TotalDebt   string `json:"totalDebt"`
	FullyRepaid bool   `json:"fullyRepaid"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
