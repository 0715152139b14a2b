// Package cache provides a redis read-through cache for median income
// thresholds. Thresholds are immutable reference data that change at most a
// few times a year, so TTL-based invalidation is sufficient.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"clearform/internal/district/models"
	"clearform/internal/district/store"
	id "clearform/pkg/domain"
	"clearform/pkg/platform/sentinel"
)

// KV is the key-value surface the cache needs. The redis client adapts to
// it; tests supply an in-memory fake.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisKV adapts a go-redis client to the KV interface.
type RedisKV struct {
	Client redis.Cmdable
}

func (r RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (r RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// ThresholdCache is a read-through cache over a MedianIncomeStore. A nil KV
// degrades to direct store reads. Cache failures are logged and treated as
// misses; the store remains the source of truth.
type ThresholdCache struct {
	store  store.MedianIncomeStore
	kv     KV
	ttl    time.Duration
	logger *slog.Logger
}

func NewThresholdCache(s store.MedianIncomeStore, kv KV, ttl time.Duration, logger *slog.Logger) *ThresholdCache {
	return &ThresholdCache{store: s, kv: kv, ttl: ttl, logger: logger}
}

// LatestForDistrict implements store.MedianIncomeStore.
func (c *ThresholdCache) LatestForDistrict(ctx context.Context, districtID id.DistrictID) (*models.MedianIncome, error) {
	if c.kv == nil {
		return c.store.LatestForDistrict(ctx, districtID)
	}

	key := thresholdKey(districtID)
	if raw, err := c.kv.Get(ctx, key); err == nil {
		threshold, decodeErr := decodeThreshold(raw)
		if decodeErr == nil {
			return threshold, nil
		}
		if c.logger != nil {
			c.logger.WarnContext(ctx, "corrupt cached threshold, falling through",
				"district_id", districtID,
				"error", decodeErr,
			)
		}
	} else if !errors.Is(err, sentinel.ErrNotFound) && c.logger != nil {
		c.logger.WarnContext(ctx, "threshold cache read failed",
			"district_id", districtID,
			"error", err,
		)
	}

	threshold, err := c.store.LatestForDistrict(ctx, districtID)
	if err != nil {
		return nil, err
	}

	if raw, encodeErr := encodeThreshold(threshold); encodeErr == nil {
		if setErr := c.kv.Set(ctx, key, raw, c.ttl); setErr != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "threshold cache write failed",
				"district_id", districtID,
				"error", setErr,
			)
		}
	}
	return threshold, nil
}

// Put delegates to the underlying store. Seeding bypasses the cache; the TTL
// bounds staleness.
func (c *ThresholdCache) Put(ctx context.Context, threshold *models.MedianIncome) error {
	return c.store.Put(ctx, threshold)
}

func thresholdKey(districtID id.DistrictID) string {
	return "clearform:threshold:" + districtID.String()
}

// cachedThreshold is the wire form stored in redis. Decimals travel as
// strings to survive the round trip exactly.
type cachedThreshold struct {
	ID                  uuid.UUID `json:"id"`
	DistrictID          uuid.UUID `json:"district_id"`
	EffectiveDate       time.Time `json:"effective_date"`
	FamilySizes         [8]string `json:"family_sizes"`
	AdditionalIncrement string    `json:"additional_increment"`
	CreatedAt           time.Time `json:"created_at"`
}

func encodeThreshold(t *models.MedianIncome) (string, error) {
	wire := cachedThreshold{
		ID:                  t.ID,
		DistrictID:          uuid.UUID(t.DistrictID),
		EffectiveDate:       t.EffectiveDate,
		AdditionalIncrement: t.AdditionalIncrement.String(),
		CreatedAt:           t.CreatedAt,
	}
	for i, amount := range t.FamilySizes {
		wire.FamilySizes[i] = amount.String()
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode threshold: %w", err)
	}
	return string(raw), nil
}

func decodeThreshold(raw string) (*models.MedianIncome, error) {
	var wire cachedThreshold
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode threshold: %w", err)
	}
	t := &models.MedianIncome{
		ID:            wire.ID,
		DistrictID:    id.DistrictID(wire.DistrictID),
		EffectiveDate: wire.EffectiveDate,
		CreatedAt:     wire.CreatedAt,
	}
	var err error
	if t.AdditionalIncrement, err = decimal.NewFromString(wire.AdditionalIncrement); err != nil {
		return nil, fmt.Errorf("decode increment: %w", err)
	}
	for i, s := range wire.FamilySizes {
		if t.FamilySizes[i], err = decimal.NewFromString(s); err != nil {
			return nil, fmt.Errorf("decode family size %d: %w", i+1, err)
		}
	}
	return t, nil
}
