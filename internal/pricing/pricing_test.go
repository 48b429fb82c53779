package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func items(t *testing.T, ids ...catalog.Service) []catalog.Item {
	t.Helper()
	out, err := catalog.Resolve(ids)
	require.NoError(t, err)
	return out
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func disabledEngine() Engine {
	return NewEngine(EarlyBird{})
}

func TestQuote_EmptySelection(t *testing.T) {
	q := disabledEngine().Quote(nil, 1, testNow)

	assert.True(t, q.BaseTotal.IsZero())
	assert.Empty(t, q.Discounts)
	assert.True(t, q.FinalTotal.IsZero())
}

func TestQuote_SingleService_NoDiscount(t *testing.T) {
	q := disabledEngine().Quote(items(t, catalog.Studio), 1, testNow)

	assert.True(t, d("39000").Equal(q.BaseTotal))
	assert.Empty(t, q.Discounts)
	assert.True(t, d("39000").Equal(q.FinalTotal))
}

func TestQuote_TwoServices_TenPercent(t *testing.T) {
	// studio (39000) + ai_alapok (39000) at one participant.
	q := disabledEngine().Quote(items(t, catalog.Studio, catalog.AIAlapok), 1, testNow)

	assert.True(t, d("78000").Equal(q.BaseTotal))
	require.Len(t, q.Discounts, 1)
	assert.Equal(t, "Mennyiségi kedvezmény (10%)", q.Discounts[0].Label)
	assert.True(t, d("-7800").Equal(q.Discounts[0].Amount))
	assert.True(t, d("70200").Equal(q.FinalTotal))
}

func TestQuote_TwoServices_TwoParticipants(t *testing.T) {
	// studio (65000) + ai_alapok (70000) at two participants.
	q := disabledEngine().Quote(items(t, catalog.Studio, catalog.AIAlapok), 2, testNow)

	assert.True(t, d("135000").Equal(q.BaseTotal))
	require.Len(t, q.Discounts, 1)
	assert.True(t, d("-13500").Equal(q.Discounts[0].Amount))
	assert.True(t, d("121500").Equal(q.FinalTotal))
}

func TestQuote_ExcludedServiceNeverDiscounted(t *testing.T) {
	// gepsimito joins the selection but the discountable base stays at
	// studio + ai_alapok. gepsimito is single-only, so the participant
	// count is 1 here by the draft's auto-correction.
	q := disabledEngine().Quote(items(t, catalog.Studio, catalog.AIAlapok, catalog.Gepsimito), 1, testNow)

	assert.True(t, d("100000").Equal(q.BaseTotal))
	require.Len(t, q.Discounts, 1)
	assert.True(t, d("-7800").Equal(q.Discounts[0].Amount))
	assert.True(t, d("92200").Equal(q.FinalTotal))
}

func TestQuote_ExcludedServiceAlone_NoMultiDiscount(t *testing.T) {
	q := disabledEngine().Quote(items(t, catalog.Gepsimito), 1, testNow)

	assert.True(t, d("22000").Equal(q.BaseTotal))
	assert.Empty(t, q.Discounts)
}

func TestQuote_ExcludedPlusOneDiscountable_NoMultiDiscount(t *testing.T) {
	// Only one discountable service remains after the exclusion, so no
	// multi-service tier applies.
	q := disabledEngine().Quote(items(t, catalog.Gepsimito, catalog.Studio), 1, testNow)

	assert.True(t, d("61000").Equal(q.BaseTotal))
	assert.Empty(t, q.Discounts)
	assert.True(t, d("61000").Equal(q.FinalTotal))
}

func TestQuote_ThreeDiscountable_FifteenPercent(t *testing.T) {
	q := disabledEngine().Quote(items(t, catalog.Studio, catalog.Vibe, catalog.Perplexity), 1, testNow)

	// 39000 + 32000 + 25000 = 96000, 15% = 14400.
	assert.True(t, d("96000").Equal(q.BaseTotal))
	require.Len(t, q.Discounts, 1)
	assert.Equal(t, "Mennyiségi kedvezmény (15%)", q.Discounts[0].Label)
	assert.True(t, d("-14400").Equal(q.Discounts[0].Amount))
	assert.True(t, d("81600").Equal(q.FinalTotal))
}

func TestQuote_EarlyBird(t *testing.T) {
	deadline := time.Date(2025, 11, 17, 23, 59, 59, 0, time.UTC)
	engine := NewEngine(EarlyBird{
		Enabled:  true,
		Deadline: deadline,
		Rate:     d("0.05"),
	})

	t.Run("before deadline", func(t *testing.T) {
		q := engine.Quote(items(t, catalog.Studio), 1, testNow)

		require.Len(t, q.Discounts, 1)
		assert.Equal(t, "Early Bird kedvezmény (5%)", q.Discounts[0].Label)
		assert.True(t, d("-1950").Equal(q.Discounts[0].Amount))
		assert.True(t, d("37050").Equal(q.FinalTotal))
	})

	t.Run("exactly at deadline still applies", func(t *testing.T) {
		q := engine.Quote(items(t, catalog.Studio), 1, deadline)
		assert.Len(t, q.Discounts, 1)
	})

	t.Run("after deadline", func(t *testing.T) {
		q := engine.Quote(items(t, catalog.Studio), 1, deadline.Add(time.Second))
		assert.Empty(t, q.Discounts)
	})

	t.Run("disabled flag wins over deadline", func(t *testing.T) {
		off := engine
		off.EarlyBird.Enabled = false
		q := off.Quote(items(t, catalog.Studio), 1, testNow)
		assert.Empty(t, q.Discounts)
	})
}

func TestQuote_EarlyBirdPrecedesMultiService(t *testing.T) {
	engine := NewEngine(EarlyBird{
		Enabled:  true,
		Deadline: time.Date(2025, 11, 17, 23, 59, 59, 0, time.UTC),
		Rate:     d("0.05"),
	})

	q := engine.Quote(items(t, catalog.Studio, catalog.AIAlapok), 1, testNow)

	require.Len(t, q.Discounts, 2)
	assert.Equal(t, "Early Bird kedvezmény (5%)", q.Discounts[0].Label)
	assert.Equal(t, "Mennyiségi kedvezmény (10%)", q.Discounts[1].Label)
	// Early bird covers the full base (78000), multi-service the same
	// discountable base here: -3900 and -7800.
	assert.True(t, d("-3900").Equal(q.Discounts[0].Amount))
	assert.True(t, d("-7800").Equal(q.Discounts[1].Amount))
	assert.True(t, d("66300").Equal(q.FinalTotal))
}

func TestQuote_ZeroRateEmitsNoLine(t *testing.T) {
	engine := disabledEngine()
	engine.TwoRate = decimal.Zero

	q := engine.Quote(items(t, catalog.Studio, catalog.AIAlapok), 1, testNow)
	assert.Empty(t, q.Discounts)
	assert.True(t, q.BaseTotal.Equal(q.FinalTotal))
}

// TestQuote_TotalIdentity pins the canonical rounding points: the final total
// always equals round(base + sum(discounts)), with the base rounded
// independently, for any selection and participant count.
func TestQuote_TotalIdentity(t *testing.T) {
	all := catalog.All()
	engine := NewEngine(EarlyBird{
		Enabled:  true,
		Deadline: time.Date(2025, 11, 17, 23, 59, 59, 0, time.UTC),
		Rate:     d("0.05"),
	})
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		var selected []catalog.Item
		for _, it := range all {
			if rng.Intn(2) == 1 {
				selected = append(selected, it)
			}
		}
		participants := 1 + rng.Intn(2)

		q := engine.Quote(selected, participants, testNow)

		sum := q.BaseTotal
		for _, line := range q.Discounts {
			require.True(t, line.Amount.IsNegative(), "discount lines are always negative")
			sum = sum.Add(line.Amount)
		}
		assert.True(t, sum.Round(0).Equal(q.FinalTotal),
			"selection %d: final %s != rounded sum %s", i, q.FinalTotal, sum.Round(0))
	}
}
