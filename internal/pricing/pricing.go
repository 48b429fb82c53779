// Package pricing computes order quotes: a base total, an itemized discount
// list, and the final total. Everything here is pure and deterministic, cheap
// enough to recompute on every form change.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
)

// Quote is the derived price breakdown for a selection. It is never mutated,
// only recomputed from the selection, the catalog, and the clock.
type Quote struct {
	BaseTotal  decimal.Decimal
	Discounts  []Line
	FinalTotal decimal.Decimal
}

// Quote prices a selection at the given participant count and time.
//
// Rounding happens at exactly two points: the base total and the final total
// are each rounded to whole forints, individual discount lines are not. The
// tests pin this as the canonical rounding behaviour; moving it produces
// off-by-one mismatches between the displayed breakdown and the total.
func (e Engine) Quote(selected []catalog.Item, participants int, now time.Time) Quote {
	base := subtotal(selected, participants)
	lines := e.Discounts(selected, participants, now)

	total := base
	for _, l := range lines {
		total = total.Add(l.Amount)
	}

	return Quote{
		BaseTotal:  base.Round(0),
		Discounts:  lines,
		FinalTotal: total.Round(0),
	}
}
