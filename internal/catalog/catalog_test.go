package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_EveryIDHasExactlyOneEntry(t *testing.T) {
	ids := []Service{Gepsimito, Studio, Perplexity, Vibe, AIAlapok, LeoHalado}

	items := All()
	require.Len(t, items, len(ids))

	seen := make(map[Service]int)
	for _, it := range items {
		seen[it.ID]++
	}
	for _, id := range ids {
		assert.Equal(t, 1, seen[id], "service %s", id)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	items := All()
	items[0].Name = "mutated"

	fresh := All()
	assert.NotEqual(t, "mutated", fresh[0].Name)
}

func TestByID(t *testing.T) {
	it, err := ByID(Studio)
	require.NoError(t, err)
	assert.Equal(t, "Stúdió fotózás alapjai", it.Name)
	assert.True(t, decimal.NewFromInt(39000).Equal(it.PriceSingle))

	_, err = ByID(Service("bogus"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name         string
		id           Service
		participants int
		want         int64
	}{
		{"studio single", Studio, 1, 39000},
		{"studio double", Studio, 2, 65000},
		{"ai_alapok double", AIAlapok, 2, 70000},
		{"single-only ignores participant count", Gepsimito, 2, 22000},
		{"leo_halado single-only", LeoHalado, 2, 60000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := ByID(tt.id)
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(it.PriceFor(tt.participants)))
		})
	}
}

func TestSingleOnly(t *testing.T) {
	gep, err := ByID(Gepsimito)
	require.NoError(t, err)
	assert.True(t, gep.SingleOnly())

	studio, err := ByID(Studio)
	require.NoError(t, err)
	assert.False(t, studio.SingleOnly())
}

func TestResolve(t *testing.T) {
	items, err := Resolve([]Service{Vibe, Studio})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Vibe, items[0].ID)
	assert.Equal(t, Studio, items[1].ID)

	_, err = Resolve([]Service{Studio, Service("nope")})
	require.ErrorIs(t, err, ErrNotFound)
}
