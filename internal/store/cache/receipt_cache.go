// Package cache provides a Redis read-through cache in front of a receipt store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ internal_store.ReceiptStore = (*ReceiptCache)(nil)

const keyPrefix = "raseed:receipts"

// ReceiptCache caches FetchByTimeRange results per user and range. Every
// user has a version counter that Save bumps, so cached ranges are never
// served after that user's receipts change. Redis failures fall through to
// the wrapped store.
type ReceiptCache struct {
	next internal_store.ReceiptStore
	rdb  redis.UniversalClient
	ttl  time.Duration
	log  *zap.SugaredLogger
}

func NewReceiptCache(next internal_store.ReceiptStore, rdb redis.UniversalClient, ttl time.Duration) *ReceiptCache {
	return &ReceiptCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  logger.GetLogger().Named("receipt_cache"),
	}
}

func versionKey(userID string) string {
	return fmt.Sprintf("%s:ver:%s", keyPrefix, userID)
}

func rangeKey(userID, version string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:v%s:%d:%d", keyPrefix, userID, version, start.Unix(), end.Unix())
}

func (c *ReceiptCache) FetchByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]types.Receipt, error) {
	version, err := c.rdb.Get(ctx, versionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		c.log.Warnw("Receipt cache unavailable, reading from store", "user_id", userID, "error", err)
		return c.next.FetchByTimeRange(ctx, userID, start, end)
	}

	key := rangeKey(userID, version, start, end)
	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var receipts []types.Receipt
		jsonErr := json.Unmarshal(cached, &receipts)
		if jsonErr == nil {
			return receipts, nil
		}
		c.log.Warnw("Discarding undecodable cache entry", "key", key, "error", jsonErr)
	case !errors.Is(err, redis.Nil):
		c.log.Warnw("Receipt cache read failed", "key", key, "error", err)
	}

	receipts, err := c.next.FetchByTimeRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(receipts)
	if err != nil {
		return receipts, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warnw("Receipt cache write failed", "key", key, "error", err)
	}
	return receipts, nil
}

// Save writes through to the store, then invalidates the user's cached ranges.
func (c *ReceiptCache) Save(ctx context.Context, receipt *types.Receipt) (string, error) {
	id, err := c.next.Save(ctx, receipt)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, receipt.UserID)
	return id, nil
}

func (c *ReceiptCache) Get(ctx context.Context, userID, id string) (*types.Receipt, error) {
	return c.next.Get(ctx, userID, id)
}

func (c *ReceiptCache) SetWalletLink(ctx context.Context, userID, id, link string) error {
	if err := c.next.SetWalletLink(ctx, userID, id, link); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *ReceiptCache) invalidate(ctx context.Context, userID string) {
	if err := c.rdb.Incr(ctx, versionKey(userID)).Err(); err != nil {
		c.log.Warnw("Failed to invalidate receipt cache", "user_id", userID, "error", err)
	}
}
