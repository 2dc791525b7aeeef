package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisFeed reads prices maintained by an external publisher from a Redis hash
// per pair: price:{BASE}:{QUOTE} with fields "price" and "decimals".
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) GetPrice(ctx context.Context, base, quote string) (*big.Int, uint8, error) {
	fields, err := f.client.HGetAll(ctx, priceKey(base, quote)).Result()
	if err != nil {
		return nil, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, ErrNoQuote
	}

	price, ok := new(big.Int).SetString(fields["price"], 10)
	if !ok {
		return nil, 0, ErrNoQuote
	}

	decimals, err := strconv.ParseUint(fields["decimals"], 10, 8)
	if err != nil {
		return nil, 0, ErrNoQuote
	}

	return price, uint8(decimals), nil
}

func priceKey(base, quote string) string {
	return fmt.Sprintf("price:%s:%s", base, quote)
}
