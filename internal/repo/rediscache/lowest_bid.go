package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const lowestBidTTL = time.Hour

// LowestBidCache keeps the advisory lowest Active amount per auction for
// cheap reads. Never authoritative: writers re-check the live aggregate
// inside their transaction, so a stale or missing key is harmless.
type LowestBidCache struct {
	client *redis.Client
}

func NewLowestBidCache(client *redis.Client) *LowestBidCache {
	return &LowestBidCache{client: client}
}

func key(auctionId string) string {
	return "auction:lowest_bid:" + auctionId
}

func (c *LowestBidCache) SetLowestAmount(ctx context.Context, auctionId string, amount decimal.Decimal) error {
	return c.client.Set(ctx, key(auctionId), amount.String(), lowestBidTTL).Err()
}

func (c *LowestBidCache) GetLowestAmount(ctx context.Context, auctionId string) (*decimal.Decimal, error) {
	val, err := c.client.Get(ctx, key(auctionId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	amount, err := decimal.NewFromString(val)
	if err != nil {
		return nil, err
	}

	return &amount, nil
}

func (c *LowestBidCache) DropLowestAmount(ctx context.Context, auctionId string) error {
	return c.client.Del(ctx, key(auctionId)).Err()
}
