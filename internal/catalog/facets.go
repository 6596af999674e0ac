package catalog

import "slices"

type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetSummary is the filter sidebar metadata for a snapshot.
type FacetSummary struct {
	Categories []FacetCount `json:"categories"`
	Brands     []FacetCount `json:"brands"`
	PriceMin   float64      `json:"priceMin"`
	PriceMax   float64      `json:"priceMax"`
	Total      int          `json:"total"`
}

// Facets counts products per category and brand. Vocabulary values come first in
// their configured order, including those with no products; values seen only in
// the snapshot follow in first-seen order.
func Facets(snapshot Snapshot, v Vocabulary) FacetSummary {
	categories := newCounter(v.Categories)
	brands := newCounter(v.Brands)
	summary := FacetSummary{}

	for _, p := range snapshot {
		if p == nil {
			continue
		}
		if summary.Total == 0 || p.Price < summary.PriceMin {
			summary.PriceMin = p.Price
		}
		if summary.Total == 0 || p.Price > summary.PriceMax {
			summary.PriceMax = p.Price
		}
		summary.Total++
		categories.add(p.Category)
		brands.add(p.Brand)
	}

	summary.Categories = categories.counts
	summary.Brands = brands.counts
	return summary
}

type counter struct {
	counts []FacetCount
}

func newCounter(seed []string) *counter {
	c := &counter{counts: make([]FacetCount, 0, len(seed))}
	for _, v := range seed {
		if !slices.ContainsFunc(c.counts, func(fc FacetCount) bool { return fc.Value == v }) {
			c.counts = append(c.counts, FacetCount{Value: v})
		}
	}
	return c
}

func (c *counter) add(v string) {
	if v == "" {
		return
	}
	i := slices.IndexFunc(c.counts, func(fc FacetCount) bool { return fc.Value == v })
	if i < 0 {
		c.counts = append(c.counts, FacetCount{Value: v, Count: 1})
		return
	}
	c.counts[i].Count++
}
