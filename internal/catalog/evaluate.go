package catalog

import "slices"

// Evaluate filters snapshot with c and returns the matches ordered by c.SortKey.
// The result holds references into snapshot, which itself is left untouched.
// An inverted price range yields an empty result.
func Evaluate(snapshot Snapshot, c Criteria) []*Product {
	result := make([]*Product, 0, len(snapshot))
	if c.PriceRange.Inverted() {
		return result
	}

	match := Compile(c)
	for _, p := range snapshot {
		if match(p) {
			result = append(result, p)
		}
	}

	slices.SortStableFunc(result, ComparatorFor(resolveSortKey(c.SortKey)))
	return result
}

// Listing is one evaluated result set together with the header counts shown above it.
type Listing struct {
	Products   []*Product `json:"products"`
	ShownCount int        `json:"shownCount"`
	TotalCount int        `json:"totalCount"`
	SearchTerm string     `json:"searchTerm,omitempty"`
	SortKey    SortKey    `json:"sortKey"`
}

// List evaluates c against snapshot and wraps the result.
func List(snapshot Snapshot, c Criteria) Listing {
	products := Evaluate(snapshot, c)
	return Listing{
		Products:   products,
		ShownCount: len(products),
		TotalCount: len(snapshot),
		SearchTerm: c.SearchTerm,
		SortKey:    resolveSortKey(c.SortKey),
	}
}

// resolveSortKey maps legacy values onto canonical keys and anything unknown onto name order.
func resolveSortKey(key SortKey) SortKey {
	if k, ok := ParseSortKey(string(key)); ok {
		return k
	}
	return SortNameAsc
}
