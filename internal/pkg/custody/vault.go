package custody

import (
	"context"
	"math/big"
)

// Vault moves fungible asset balances between named owners. Implementations
// must provide fee-less, non-rebasing semantics: the amount debited from one
// owner is exactly the amount creditable to another, and balances never change
// outside Debit/Credit. The ledger's collateral accounting is invalid over any
// asset that breaks this.
type Vault interface {
	Debit(ctx context.Context, asset, owner string, amount *big.Int) error
	Credit(ctx context.Context, asset, owner string, amount *big.Int) error
	BalanceOf(ctx context.Context, asset, owner string) (*big.Int, error)
}
