// Package catalog holds the fixed table of sellable mentorship packages.
//
// The catalog is compile-time data: prices are edited here and loaded once at
// process start. There is no runtime registration.
package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Service identifies a sellable mentorship package.
type Service string

// Known service identifiers. Every identifier has exactly one catalog entry.
const (
	Gepsimito  Service = "gepsimito"
	Studio     Service = "studio"
	Perplexity Service = "perplexity"
	Vibe       Service = "vibe"
	AIAlapok   Service = "ai_alapok"
	LeoHalado  Service = "leo_halado"
)

// ErrNotFound is returned when a requested service does not exist.
var ErrNotFound = errors.New("service not found")

// Item is a purchasable service package. PriceDouble is nil for packages
// restricted to a single participant.
type Item struct {
	ID          Service
	Name        string
	Description string
	PriceSingle decimal.Decimal
	PriceDouble *decimal.Decimal
}

// SingleOnly reports whether the package is restricted to one participant.
func (i Item) SingleOnly() bool {
	return i.PriceDouble == nil
}

// PriceFor returns the package price for the given participant count.
// Packages without a two-participant price always charge the single price.
func (i Item) PriceFor(participants int) decimal.Decimal {
	if participants == 2 && i.PriceDouble != nil {
		return *i.PriceDouble
	}
	return i.PriceSingle
}

// IMPORTANT: service prices can be edited here.
var items = []Item{
	{
		ID:          Gepsimito,
		Name:        "Gépsimító",
		Description: "1-2 óra, egyéni oktatás Budapesten (nincs kedvezmény)",
		PriceSingle: huf(22000),
	},
	{
		ID:          Studio,
		Name:        "Stúdió fotózás alapjai",
		Description: "2 óra, modell biztosításával",
		PriceSingle: huf(39000),
		PriceDouble: hufp(65000),
	},
	{
		ID:          Perplexity,
		Name:        "Perplexity AI kereső alapjai",
		Description: "100 perc, egyéni",
		PriceSingle: huf(25000),
		PriceDouble: hufp(45000),
	},
	{
		ID:          Vibe,
		Name:        "Vibe coding alapjai",
		Description: "100 perc, egyéni",
		PriceSingle: huf(32000),
		PriceDouble: hufp(55000),
	},
	{
		ID:          AIAlapok,
		Name:        "AI képgenerálás alapjai",
		Description: "160 perc, ajándék ebook + 30p online mentorálás",
		PriceSingle: huf(39000),
		PriceDouble: hufp(70000),
	},
	{
		ID:          LeoHalado,
		Name:        "Leonardo AI tudásbázis - haladó",
		Description: "4 óra, ajándék ebook + 30p online mentorálás (csak egyéni!)",
		PriceSingle: huf(60000),
	},
}

var byID = func() map[Service]Item {
	m := make(map[Service]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}()

// All returns every catalog item in display order.
func All() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// ByID looks up a single catalog item. It returns ErrNotFound for unknown ids.
func ByID(id Service) (Item, error) {
	it, ok := byID[id]
	if !ok {
		return Item{}, errors.Wrapf(ErrNotFound, "%q", id)
	}
	return it, nil
}

// Resolve maps a selection of service ids to catalog items, preserving order.
func Resolve(ids []Service) ([]Item, error) {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		it, err := ByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func huf(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func hufp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
