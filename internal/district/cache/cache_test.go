package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"clearform/internal/district/models"
	"clearform/internal/district/store"
	id "clearform/pkg/domain"
	"clearform/pkg/money"
	"clearform/pkg/platform/sentinel"
)

type fakeKV struct {
	data map[string]string
	sets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	val, ok := f.data[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return val, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.data[key] = value
	f.sets++
	return nil
}

type countingStore struct {
	store.MedianIncomeStore
	reads int
}

func (c *countingStore) LatestForDistrict(ctx context.Context, districtID id.DistrictID) (*models.MedianIncome, error) {
	c.reads++
	return c.MedianIncomeStore.LatestForDistrict(ctx, districtID)
}

func seedThreshold(t *testing.T, s store.MedianIncomeStore, districtID id.DistrictID) *models.MedianIncome {
	t.Helper()
	threshold := &models.MedianIncome{
		ID:            uuid.New(),
		DistrictID:    districtID,
		EffectiveDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		FamilySizes: [8]decimal.Decimal{
			money.MustParse("59128.00"), money.MustParse("73373.00"),
			money.MustParse("88507.00"), money.MustParse("106903.00"),
			money.MustParse("116803.00"), money.MustParse("126703.00"),
			money.MustParse("136603.00"), money.MustParse("146503.00"),
		},
		AdditionalIncrement: money.MustParse("9900.00"),
		CreatedAt:           time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(context.Background(), threshold))
	return threshold
}

func TestThresholdCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	districtID := id.NewDistrictID()
	backing := &countingStore{MedianIncomeStore: store.NewInMemory()}
	want := seedThreshold(t, backing, districtID)

	kv := newFakeKV()
	cache := NewThresholdCache(backing, kv, time.Hour, nil)

	// First read misses the cache, hits the store, and populates the cache.
	got, err := cache.LatestForDistrict(ctx, districtID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, 1, backing.reads)
	require.Equal(t, 1, kv.sets)

	// Second read is served from the cache.
	got, err = cache.LatestForDistrict(ctx, districtID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.True(t, want.FamilySizes[0].Equal(got.FamilySizes[0]))
	require.True(t, want.AdditionalIncrement.Equal(got.AdditionalIncrement))
	require.True(t, want.EffectiveDate.Equal(got.EffectiveDate))
	require.Equal(t, 1, backing.reads)
}

func TestThresholdCacheNilClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	districtID := id.NewDistrictID()
	backing := &countingStore{MedianIncomeStore: store.NewInMemory()}
	seedThreshold(t, backing, districtID)

	cache := NewThresholdCache(backing, nil, time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := cache.LatestForDistrict(ctx, districtID)
		require.NoError(t, err)
	}
	require.Equal(t, 2, backing.reads)
}

func TestThresholdCacheCorruptEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	districtID := id.NewDistrictID()
	backing := &countingStore{MedianIncomeStore: store.NewInMemory()}
	want := seedThreshold(t, backing, districtID)

	kv := newFakeKV()
	kv.data[thresholdKey(districtID)] = "{not json"

	cache := NewThresholdCache(backing, kv, time.Hour, nil)

	got, err := cache.LatestForDistrict(ctx, districtID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, 1, backing.reads)
}

func TestThresholdCacheStoreMissPropagates(t *testing.T) {
	ctx := context.Background()
	backing := store.NewInMemory()
	cache := NewThresholdCache(backing, newFakeKV(), time.Hour, nil)

	_, err := cache.LatestForDistrict(ctx, id.NewDistrictID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
