// Package cache keeps computed fleet analytics in Redis so repeated
// dashboard loads over unchanged data skip the recomputation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/fleet"
	"github.com/ukydev/fleet-admin/internal/models"
)

const keyPrefix = "fleet:analytics:"

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return client, nil
}

// Lookup reports the outcome of a cache read.
type Lookup string

const (
	Hit      Lookup = "hit"
	Miss     Lookup = "miss"
	Disabled Lookup = "disabled"
	Failed   Lookup = "error"
)

// AnalyticsCache stores FleetAnalytics snapshots keyed by a hash of their
// inputs. A nil *AnalyticsCache is valid and always computes.
type AnalyticsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewAnalyticsCache creates a cache backed by client.
func NewAnalyticsCache(client redis.Cmdable, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl}
}

// Key derives the cache key from every input that affects the result.
func Key(vehicles []models.Vehicle, records []models.ServiceRecord, today time.Time) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(vehicles); err != nil {
		return "", fmt.Errorf("hash vehicles: %w", err)
	}
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("hash service records: %w", err)
	}
	if err := enc.Encode(fleet.FormatDate(today)); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Get reads a snapshot. A missing key returns nil and no error.
func (c *AnalyticsCache) Get(ctx context.Context, key string) (*fleet.FleetAnalytics, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a fleet.FleetAnalytics
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode cached analytics: %w", err)
	}
	return &a, nil
}

// Set stores a snapshot under key for the configured TTL.
func (c *AnalyticsCache) Set(ctx context.Context, key string, a fleet.FleetAnalytics) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, string(data), c.ttl).Err()
}

// Analytics returns the analytics for the inputs, from cache when possible.
// Cache failures are logged and never surface to the caller.
func (c *AnalyticsCache) Analytics(ctx context.Context, vehicles []models.Vehicle, records []models.ServiceRecord, today time.Time) (fleet.FleetAnalytics, Lookup) {
	if c == nil || c.client == nil {
		return fleet.ComputeFleetAnalytics(vehicles, records, today), Disabled
	}

	key, err := Key(vehicles, records, today)
	if err != nil {
		log.WithError(err).Warn("analytics cache key")
		return fleet.ComputeFleetAnalytics(vehicles, records, today), Failed
	}

	cached, err := c.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("analytics cache read failed")
	}
	if cached != nil {
		return *cached, Hit
	}

	a := fleet.ComputeFleetAnalytics(vehicles, records, today)
	if err := c.Set(ctx, key, a); err != nil {
		log.WithError(err).WithField("key", key).Warn("analytics cache write failed")
		return a, Failed
	}
	return a, Miss
}
