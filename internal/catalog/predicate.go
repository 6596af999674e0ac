package catalog

import (
	"slices"
	"strings"
)

// Predicate reports whether a product belongs in a listing.
type Predicate func(p *Product) bool

// Compile builds the composite predicate for c. Facets are ANDed together and a
// facet holding its default value always passes. A multi-value facet matches
// when the product's value is any member of the selected set.
func Compile(c Criteria) Predicate {
	checks := make([]Predicate, 0, 5)

	if term := strings.ToLower(strings.TrimSpace(c.SearchTerm)); term != "" {
		checks = append(checks, matchSearch(term))
	}
	if len(c.Categories) > 0 {
		categories := slices.Clone(c.Categories)
		checks = append(checks, func(p *Product) bool {
			return slices.Contains(categories, p.Category)
		})
	}
	if len(c.Brands) > 0 {
		brands := slices.Clone(c.Brands)
		checks = append(checks, func(p *Product) bool {
			return p.Brand != "" && slices.Contains(brands, p.Brand)
		})
	}
	if c.PriceRange != FullPriceRange {
		r := c.PriceRange
		checks = append(checks, func(p *Product) bool {
			return r.Contains(p.Price)
		})
	}
	if c.MinRating > 0 {
		floor := c.MinRating
		checks = append(checks, func(p *Product) bool {
			return p.Rating >= floor
		})
	}

	return func(p *Product) bool {
		if p == nil {
			return false
		}
		for _, check := range checks {
			if !check(p) {
				return false
			}
		}
		return true
	}
}

func matchSearch(term string) Predicate {
	return func(p *Product) bool {
		for _, field := range [...]string{p.Name, p.Brand, p.Category, p.Description} {
			if field != "" && strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}
}
