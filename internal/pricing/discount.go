package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// Line is a single applied discount. Amount is always negative; a rule that
// would produce a zero amount emits no line at all.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// EarlyBird configures the time-gated discount on the full base total.
type EarlyBird struct {
	Enabled  bool
	Deadline time.Time
	// Rate is the fractional reduction, e.g. 0.05 for 5%.
	Rate decimal.Decimal
}

// Engine computes the ordered discount list for a selection. The zero value is
// not usable; construct with NewEngine.
type Engine struct {
	EarlyBird EarlyBird

	// TwoRate applies when exactly two discountable services are selected,
	// ThreePlusRate when three or more are.
	TwoRate       decimal.Decimal
	ThreePlusRate decimal.Decimal

	// Excluded never counts toward the multi-service discount and never
	// receives it, regardless of catalog size.
	Excluded catalog.Service
}

// NewEngine returns an Engine with the business's standard multi-service tiers
// (10% for two, 15% for three or more) and the given early-bird settings.
func NewEngine(eb EarlyBird) Engine {
	return Engine{
		EarlyBird:     eb,
		TwoRate:       decimal.NewFromFloat(0.10),
		ThreePlusRate: decimal.NewFromFloat(0.15),
		Excluded:      catalog.Gepsimito,
	}
}

// Discounts returns the applicable discount lines in their fixed order:
// early-bird first, then the multi-service tier. Both rules are pure over the
// selection, participant count, and clock.
func (e Engine) Discounts(selected []catalog.Item, participants int, now time.Time) []Line {
	if len(selected) == 0 {
		return nil
	}

	var lines []Line

	if e.EarlyBird.Enabled && !now.After(e.EarlyBird.Deadline) && e.EarlyBird.Rate.IsPositive() {
		base := subtotal(selected, participants)
		lines = append(lines, Line{
			Label:  "Early Bird kedvezmény (" + percentLabel(e.EarlyBird.Rate) + ")",
			Amount: base.Mul(e.EarlyBird.Rate).Neg(),
		})
	}

	discountable := make([]catalog.Item, 0, len(selected))
	for _, it := range selected {
		if it.ID != e.Excluded {
			discountable = append(discountable, it)
		}
	}

	if n := len(discountable); n >= 2 {
		rate := e.TwoRate
		if n >= 3 {
			rate = e.ThreePlusRate
		}
		if rate.IsPositive() {
			base := subtotal(discountable, participants)
			lines = append(lines, Line{
				Label:  "Mennyiségi kedvezmény (" + percentLabel(rate) + ")",
				Amount: base.Mul(rate).Neg(),
			})
		}
	}

	return lines
}

// subtotal sums participant-aware prices over the given items, unrounded.
func subtotal(items []catalog.Item, participants int) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.PriceFor(participants))
	}
	return sum
}

// percentLabel renders a fractional rate as a percentage, e.g. 0.05 -> "5%".
func percentLabel(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}
