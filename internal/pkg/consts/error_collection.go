package consts

import "meridian/kudos_credit_ledger/internal/pkg/models"

var (
	// Input validation
	ErrInvalidBorrower = &models.CustomError{
		Code:    "KUDOS_VALIDATION_BORROWER_INVALID",
		Message: "Borrower identifier is empty",
	}
	ErrInvalidAsset = &models.CustomError{
		Code:    "KUDOS_VALIDATION_ASSET_INVALID",
		Message: "Asset identifier is empty",
	}
	ErrInvalidAmount = &models.CustomError{
		Code:    "KUDOS_VALIDATION_AMOUNT_INVALID",
		Message: "Amount must be a positive integer",
	}
	ErrDurationOutOfBounds = &models.CustomError{
		Code:    "KUDOS_VALIDATION_DURATION_OUT_OF_BOUNDS",
		Message: "Loan duration outside the configured window",
	}

	// State conflicts
	ErrLedgerPaused = &models.CustomError{
		Code:    "KUDOS_STATE_LEDGER_PAUSED",
		Message: "Ledger is paused",
	}
	ErrActiveLoanExists = &models.CustomError{
		Code:    "KUDOS_STATE_BORROWER_HAS_ACTIVE_LOAN",
		Message: "Borrower already has an active loan",
	}
	ErrLoanNotFound = &models.CustomError{
		Code:    "KUDOS_STATE_LOAN_NOT_FOUND",
		Message: "Loan does not exist",
	}
	ErrLoanNotActive = &models.CustomError{
		Code:    "KUDOS_STATE_LOAN_NOT_ACTIVE",
		Message: "Loan is not active",
	}
	ErrCallerNotBorrower = &models.CustomError{
		Code:    "KUDOS_STATE_CALLER_NOT_BORROWER",
		Message: "Caller is not the loan borrower",
	}
	ErrNotPastDue = &models.CustomError{
		Code:    "KUDOS_STATE_LOAN_NOT_PAST_DUE",
		Message: "Loan is not past its due date and grace period",
	}

	// Policy rejections
	ErrPolicyDefaulter = &models.CustomError{
		Code:    "KUDOS_POLICY_BORROWER_DEFAULTED",
		Message: "Borrower carries a default badge",
	}
	ErrPolicyMissingProof = &models.CustomError{
		Code:    "KUDOS_POLICY_PROOF_MISSING",
		Message: "Identity proof required but absent",
	}
	ErrPolicyBadProof = &models.CustomError{
		Code:    "KUDOS_POLICY_PROOF_INVALID",
		Message: "Identity proof failed verification",
	}
	ErrPolicyNoOracle = &models.CustomError{
		Code:    "KUDOS_POLICY_ORACLE_UNAVAILABLE",
		Message: "No price feed configured for collateral valuation",
	}
	ErrPolicyNoCollateral = &models.CustomError{
		Code:    "KUDOS_POLICY_COLLATERAL_MISSING",
		Message: "Collateral required but absent",
	}
	ErrPolicyBadPrice = &models.CustomError{
		Code:    "KUDOS_POLICY_PRICE_UNUSABLE",
		Message: "Price feed returned no usable price",
	}
	ErrPolicyOverLimit = &models.CustomError{
		Code:    "KUDOS_POLICY_AMOUNT_OVER_LIMIT",
		Message: "Requested amount exceeds the borrow ceiling",
	}
	ErrBorrowNotAllowed = &models.CustomError{
		Code:    "KUDOS_POLICY_BORROW_NOT_ALLOWED",
		Message: "Borrow request rejected by risk policy",
	}

	// Resource exhaustion
	ErrInsufficientLiquidity = &models.CustomError{
		Code:    "KUDOS_RESOURCE_INSUFFICIENT_LIQUIDITY",
		Message: "Ledger free liquidity does not cover the requested amount",
	}
	ErrInsufficientFunds = &models.CustomError{
		Code:    "KUDOS_CUSTODY_INSUFFICIENT_FUNDS",
		Message: "Account balance does not cover the transfer",
	}

	// Reentrancy / misconfiguration
	ErrReentrantCall = &models.CustomError{
		Code:    "KUDOS_REENTRANCY_MUTATING_CALL_IN_PROGRESS",
		Message: "Another mutating ledger call is in progress",
	}
	ErrRiskPolicyNotSet = &models.CustomError{
		Code:    "KUDOS_DEPENDENCY_RISK_POLICY_NOT_SET",
		Message: "Risk policy module is not configured",
	}
	ErrInterestModelNotSet = &models.CustomError{
		Code:    "KUDOS_DEPENDENCY_INTEREST_MODEL_NOT_SET",
		Message: "Interest model module is not configured",
	}
	ErrCustodyNotSet = &models.CustomError{
		Code:    "KUDOS_DEPENDENCY_CUSTODY_NOT_SET",
		Message: "Asset custody module is not configured",
	}
)
