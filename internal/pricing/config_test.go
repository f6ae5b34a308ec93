package pricing

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig("test-co")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "test-co", cfg.CompanyID)
	assert.Greater(t, cfg.BaseRates.Walls, 0.0)
	assert.GreaterOrEqual(t, cfg.MinimumJobPrice, 0.0)

	// Every default product catalog entry uses a closed-set grade.
	for _, grades := range cfg.PaintSuppliers.Products {
		for grade := range grades {
			assert.True(t, grade.Valid(), "grade %s", grade)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CompanyConfig)
	}{
		{"missing company id", func(c *CompanyConfig) { c.CompanyID = "" }},
		{"negative minimum", func(c *CompanyConfig) { c.MinimumJobPrice = -1 }},
		{"zero rush multiplier", func(c *CompanyConfig) { c.RushJobMultiplier = 0 }},
		{"non-positive seasonal multiplier", func(c *CompanyConfig) { c.SeasonalPricing["winter"] = 0 }},
		{"negative prep multiplier", func(c *CompanyConfig) { c.PrepWorkMultipliers["poor"] = -0.5 }},
		{"unknown grade", func(c *CompanyConfig) {
			c.PaintSuppliers.Products["interior_walls"][Grade("bargain")] = PaintProduct{Name: "X", Multiplier: 1, SpreadRate: 400}
		}},
		{"zero spread rate", func(c *CompanyConfig) {
			c.PaintSuppliers.Products["trim"][GradeLuxury] = PaintProduct{Name: "X", Multiplier: 1, SpreadRate: 0}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig("test-co")
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGradeValid(t *testing.T) {
	for _, g := range Grades {
		assert.True(t, g.Valid())
	}
	assert.False(t, Grade("deluxe").Valid())
}

func TestMultiplierDeltaPercent(t *testing.T) {
	assert.InDelta(t, 15.0, MultiplierDeltaPercent(1.15), 1e-9)
	assert.InDelta(t, -10.0, MultiplierDeltaPercent(0.9), 1e-9)
	assert.InDelta(t, 0.0, MultiplierDeltaPercent(1.0), 1e-9)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStoreGetReturnsDefault(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Get(context.Background(), "fresh-co")
	require.NoError(t, err)
	assert.Equal(t, "fresh-co", cfg.CompanyID)
	assert.Equal(t, DefaultConfig("fresh-co").BaseRates, cfg.BaseRates)
}

func TestStoreSetGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := DefaultConfig("acme")
	cfg.BaseRates.Walls = 4.25
	cfg.MinimumJobPrice = 500
	require.NoError(t, store.Set(ctx, cfg))
	assert.False(t, cfg.LastUpdated.IsZero(), "Set stamps LastUpdated")

	got, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 4.25, got.BaseRates.Walls)
	assert.Equal(t, 500.0, got.MinimumJobPrice)
}

func TestStoreSetRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	cfg := DefaultConfig("acme")
	cfg.RushJobMultiplier = -1
	assert.Error(t, store.Set(context.Background(), cfg))
}
