package catalog

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two products. Zero means tied; ties are resolved by the
// stable sort in Evaluate, never by the comparator.
type Comparator func(a, b *Product) int

// NameLocale is the collation locale for name ordering.
var NameLocale = language.English

// ComparatorFor returns the ordering for key. Unknown keys order by name.
// The returned comparator owns a collator and must not be shared between goroutines.
func ComparatorFor(key SortKey) Comparator {
	switch key {
	case SortPriceAsc:
		return func(a, b *Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		return func(a, b *Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRatingDesc:
		return func(a, b *Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortDiscountDesc:
		return func(a, b *Product) int { return cmp.Compare(b.Discount(), a.Discount()) }
	case SortPopularityDesc:
		return func(a, b *Product) int { return cmp.Compare(b.ReviewsCount, a.ReviewsCount) }
	default:
		c := collate.New(NameLocale)
		return func(a, b *Product) int { return c.CompareString(a.Name, b.Name) }
	}
}
