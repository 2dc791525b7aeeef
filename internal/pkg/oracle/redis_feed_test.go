package oracle

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) (*RedisFeed, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisFeed(client), srv
}

func TestRedisFeed_GetPrice(t *testing.T) {
	feed, srv := newTestFeed(t)

	srv.HSet("price:GOLDk:USDk", "price", "250000000", "decimals", "8")

	price, decimals, err := feed.GetPrice(context.Background(), "GOLDk", "USDk")
	require.NoError(t, err)
	assert.Equal(t, int64(250000000), price.Int64())
	assert.Equal(t, uint8(8), decimals)
}

func TestRedisFeed_GetPrice_MissingPair(t *testing.T) {
	feed, _ := newTestFeed(t)

	_, _, err := feed.GetPrice(context.Background(), "GOLDk", "USDk")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestRedisFeed_GetPrice_MalformedFields(t *testing.T) {
	feed, srv := newTestFeed(t)

	srv.HSet("price:GOLDk:USDk", "price", "not-a-number", "decimals", "8")
	_, _, err := feed.GetPrice(context.Background(), "GOLDk", "USDk")
	assert.ErrorIs(t, err, ErrNoQuote)

	srv.HSet("price:SILVk:USDk", "price", "100", "decimals", "999")
	_, _, err = feed.GetPrice(context.Background(), "SILVk", "USDk")
	assert.ErrorIs(t, err, ErrNoQuote)
}
