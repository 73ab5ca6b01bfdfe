package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rmtsolutions/logisticsapi/internal/config"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
)

const trackingCacheTTL = 10 * time.Minute

// TrackingCache is a best-effort cache in front of the public tracking
// lookup. A miss or an unreachable Redis falls through to the database;
// callers treat every error as a miss.
type TrackingCache struct {
	client *redis.Client
}

// NewTrackingCache connects to Redis and verifies the connection
func NewTrackingCache(cfg config.RedisConfig) (*TrackingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	return &TrackingCache{client: client}, nil
}

func (c *TrackingCache) Close() error {
	return c.client.Close()
}

func trackingKey(refNumber string) string {
	return fmt.Sprintf("tracking:%s", refNumber)
}

// Get returns the cached delivery for a reference number, or nil on miss
func (c *TrackingCache) Get(ctx context.Context, refNumber string) (*domain.Delivery, error) {
	data, err := c.client.Get(ctx, trackingKey(refNumber)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var delivery domain.Delivery
	if err := json.Unmarshal(data, &delivery); err != nil {
		return nil, err
	}
	return &delivery, nil
}

// Set stores the delivery under its reference number
func (c *TrackingCache) Set(ctx context.Context, delivery *domain.Delivery) error {
	data, err := json.Marshal(delivery)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trackingKey(delivery.ReferenceNumber), data, trackingCacheTTL).Err()
}

// Invalidate drops the cached entry after a delivery mutation
func (c *TrackingCache) Invalidate(ctx context.Context, refNumber string) error {
	return c.client.Del(ctx, trackingKey(refNumber)).Err()
}
