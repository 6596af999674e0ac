// Package catalog turns a product snapshot plus a set of shopper criteria into the
// ordered listing shown on the storefront. Everything here is pure: no I/O, no logging,
// and no mutation of the snapshot handed in by the caller.
package catalog

// Product is a single catalog record as supplied by the persistence layer.
// Brand and Description are optional; the empty string means absent.
type Product struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	OriginalPrice      *float64 `json:"original_price,omitempty"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
	Rating             float64  `json:"rating"`
	ReviewsCount       int      `json:"reviews_count"`
	Description        string   `json:"description,omitempty"`
	Image              string   `json:"image,omitempty"`
}

// Discount returns the discount percentage used for discount ordering.
// An explicit percentage wins; otherwise it is derived from OriginalPrice
// when that is above Price. Anything else counts as no discount.
func (p *Product) Discount() float64 {
	if p.DiscountPercentage != nil {
		return *p.DiscountPercentage
	}
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price && *p.OriginalPrice > 0 {
		return (*p.OriginalPrice - p.Price) / *p.OriginalPrice * 100
	}
	return 0
}

// Snapshot is an immutable point-in-time view of the catalog.
type Snapshot []*Product

// Refs converts a slice of records into a snapshot of references without copying them.
func Refs(products []Product) Snapshot {
	out := make(Snapshot, len(products))
	for i := range products {
		out[i] = &products[i]
	}
	return out
}
