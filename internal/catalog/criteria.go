package catalog

import (
	"math"
	"slices"
	"strings"
)

// SortKey selects the ordering of a listing.
type SortKey string

const (
	SortNameAsc        SortKey = "name-ascending"
	SortPriceAsc       SortKey = "price-ascending"
	SortPriceDesc      SortKey = "price-descending"
	SortRatingDesc     SortKey = "rating-descending"
	SortDiscountDesc   SortKey = "discount-descending"
	SortPopularityDesc SortKey = "popularity-descending"
)

// SortKeys lists every supported key in dropdown order.
var SortKeys = []SortKey{
	SortNameAsc,
	SortPriceAsc,
	SortPriceDesc,
	SortRatingDesc,
	SortDiscountDesc,
	SortPopularityDesc,
}

// storefront dropdown values still found in bookmarked URLs
var legacySortKeys = map[string]SortKey{
	"name":       SortNameAsc,
	"price-low":  SortPriceAsc,
	"price-high": SortPriceDesc,
	"rating":     SortRatingDesc,
	"discount":   SortDiscountDesc,
	"popularity": SortPopularityDesc,
}

// ParseSortKey resolves a canonical or legacy sort value. ok is false for anything unknown.
func ParseSortKey(raw string) (SortKey, bool) {
	raw = strings.TrimSpace(raw)
	for _, k := range SortKeys {
		if string(k) == raw {
			return k, true
		}
	}
	k, ok := legacySortKeys[raw]
	return k, ok
}

// PriceRange is an inclusive [Min, Max] price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FullPriceRange places no restriction on price.
var FullPriceRange = PriceRange{Min: 0, Max: math.MaxFloat64}

// Inverted reports whether the range can match nothing.
func (r PriceRange) Inverted() bool {
	return r.Min > r.Max || math.IsNaN(r.Min) || math.IsNaN(r.Max)
}

// Normalized swaps inverted bounds and clamps negatives to zero.
func (r PriceRange) Normalized() PriceRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < 0 {
		r.Max = 0
	}
	return r
}

// Contains reports min <= price <= max.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Criteria is the complete description of one listing query. It is a value:
// helpers return modified copies and never touch the receiver's slices.
type Criteria struct {
	SearchTerm string     `json:"searchTerm"`
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	PriceRange PriceRange `json:"priceRange"`
	MinRating  float64    `json:"minRating"`
	SortKey    SortKey    `json:"sortKey"`
}

// DefaultCriteria matches every record and orders by name.
func DefaultCriteria() Criteria {
	return Criteria{
		Categories: []string{},
		Brands:     []string{},
		PriceRange: FullPriceRange,
		SortKey:    SortNameAsc,
	}
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	c.Categories = cloneSet(c.Categories)
	c.Brands = cloneSet(c.Brands)
	return c
}

// Equal compares field values, treating the facet sets as unordered.
func (c Criteria) Equal(o Criteria) bool {
	return c.SearchTerm == o.SearchTerm &&
		c.PriceRange == o.PriceRange &&
		c.MinRating == o.MinRating &&
		c.SortKey == o.SortKey &&
		sameSet(c.Categories, o.Categories) &&
		sameSet(c.Brands, o.Brands)
}

func (c Criteria) HasCategory(category string) bool {
	return slices.Contains(c.Categories, category)
}

func (c Criteria) HasBrand(brand string) bool {
	return slices.Contains(c.Brands, brand)
}

func (c Criteria) WithSearchTerm(term string) Criteria {
	c = c.Clone()
	c.SearchTerm = term
	return c
}

// WithCategoryToggled adds the category when absent and removes it when present.
func (c Criteria) WithCategoryToggled(category string) Criteria {
	c = c.Clone()
	c.Categories = toggle(c.Categories, category)
	return c
}

// WithBrandToggled adds the brand when absent and removes it when present.
func (c Criteria) WithBrandToggled(brand string) Criteria {
	c = c.Clone()
	c.Brands = toggle(c.Brands, brand)
	return c
}

func (c Criteria) WithCategories(categories ...string) Criteria {
	c = c.Clone()
	c.Categories = dedupe(categories)
	return c
}

func (c Criteria) WithBrands(brands ...string) Criteria {
	c = c.Clone()
	c.Brands = dedupe(brands)
	return c
}

func (c Criteria) WithPriceRange(min, max float64) Criteria {
	c = c.Clone()
	c.PriceRange = PriceRange{Min: min, Max: max}
	return c
}

func (c Criteria) WithMinRating(rating float64) Criteria {
	c = c.Clone()
	c.MinRating = rating
	return c
}

func (c Criteria) WithSortKey(key SortKey) Criteria {
	c = c.Clone()
	c.SortKey = key
	return c
}

// WithFacetsCleared resets category, brand, price and rating to their defaults.
// The search term and sort key are kept.
func (c Criteria) WithFacetsCleared() Criteria {
	d := DefaultCriteria()
	d.SearchTerm = c.SearchTerm
	d.SortKey = c.SortKey
	return d
}

// cloneSet copies s with repeated values collapsed.
func cloneSet(s []string) []string {
	return dedupe(s)
}

func toggle(s []string, v string) []string {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return append(s, v)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	a, b = dedupe(a), dedupe(b)
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}
