package custody

import (
	"context"
	"math/big"
	"sync"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
)

// MemoryVault is an in-process Vault keyed by asset then owner.
type MemoryVault struct {
	mu       sync.RWMutex
	balances map[string]map[string]*big.Int
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		balances: make(map[string]map[string]*big.Int),
	}
}

func (v *MemoryVault) Debit(ctx context.Context, asset, owner string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return consts.ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	balance := v.balance(asset, owner)
	if balance.Cmp(amount) < 0 {
		return consts.ErrInsufficientFunds
	}
	balance.Sub(balance, amount)
	return nil
}

func (v *MemoryVault) Credit(ctx context.Context, asset, owner string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return consts.ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	balance := v.balance(asset, owner)
	balance.Add(balance, amount)
	return nil
}

func (v *MemoryVault) BalanceOf(ctx context.Context, asset, owner string) (*big.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if owners, ok := v.balances[asset]; ok {
		if balance, ok := owners[owner]; ok {
			return new(big.Int).Set(balance), nil
		}
	}
	return new(big.Int), nil
}

// balance returns the live balance entry, creating it if needed. Callers hold v.mu.
func (v *MemoryVault) balance(asset, owner string) *big.Int {
	owners, ok := v.balances[asset]
	if !ok {
		owners = make(map[string]*big.Int)
		v.balances[asset] = owners
	}
	balance, ok := owners[owner]
	if !ok {
		balance = new(big.Int)
		owners[owner] = balance
	}
	return balance
}
