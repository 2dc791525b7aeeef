package oracle

import (
	"context"
	"math/big"

	"meridian/kudos_credit_ledger/internal/pkg/models"
)

// PriceFeed quotes one unit of base in quote-asset terms, scaled by 10^decimals.
// A feed that cannot produce a usable quote returns an error; callers treat that
// as a recoverable rejection, never as fatal.
type PriceFeed interface {
	GetPrice(ctx context.Context, base, quote string) (*big.Int, uint8, error)
}

var ErrNoQuote = &models.CustomError{
	Code:    "KUDOS_ORACLE_NO_QUOTE",
	Message: "No price available for the requested pair",
}
