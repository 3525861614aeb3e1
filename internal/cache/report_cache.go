package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tarcart/internal/models"
)

const (
	snapshotKey = "reports:snapshot"
	spreadKey   = "reports:spread"

	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// ErrMiss signals the requested report is not cached.
var ErrMiss = errors.New("cache: miss")

// ReportCache keeps the snapshot and spread reports in redis. Entries are
// invalidated whenever moderation or deletion mutates the ledger, with the
// TTL as a backstop.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient returns a configured go-redis client validated with PING.
func NewClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("cache: redis addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// NewReportCache returns a redis-backed report cache.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

// GetSnapshot returns a cached snapshot report or ErrMiss.
func (c *ReportCache) GetSnapshot(ctx context.Context) ([]models.StationSnapshot, error) {
	var out []models.StationSnapshot
	if err := c.get(ctx, snapshotKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSnapshot caches a snapshot report.
func (c *ReportCache) SetSnapshot(ctx context.Context, report []models.StationSnapshot) error {
	return c.set(ctx, snapshotKey, report)
}

// GetSpread returns a cached spread report or ErrMiss.
func (c *ReportCache) GetSpread(ctx context.Context) ([]models.GradeSpread, error) {
	var out []models.GradeSpread
	if err := c.get(ctx, spreadKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSpread caches a spread report.
func (c *ReportCache) SetSpread(ctx context.Context, report []models.GradeSpread) error {
	return c.set(ctx, spreadKey, report)
}

// Invalidate drops every cached report.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey, spreadKey).Err()
}

func (c *ReportCache) get(ctx context.Context, key string, out interface{}) error {
	raw, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (c *ReportCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
