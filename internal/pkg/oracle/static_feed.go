package oracle

import (
	"context"
	"math/big"
	"sync"
)

type quote struct {
	price    *big.Int
	decimals uint8
}

// StaticFeed serves operator-seeded prices; used for development and tests.
type StaticFeed struct {
	mu     sync.RWMutex
	quotes map[string]quote
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{quotes: make(map[string]quote)}
}

func (f *StaticFeed) SetPrice(base, quoteAsset string, price *big.Int, decimals uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[priceKey(base, quoteAsset)] = quote{price: new(big.Int).Set(price), decimals: decimals}
}

func (f *StaticFeed) GetPrice(ctx context.Context, base, quoteAsset string) (*big.Int, uint8, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	q, ok := f.quotes[priceKey(base, quoteAsset)]
	if !ok {
		return nil, 0, ErrNoQuote
	}
	return new(big.Int).Set(q.price), q.decimals, nil
}
