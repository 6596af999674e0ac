package catalog

import (
	"math"
	"slices"
)

// Vocabulary holds the category and brand values the storefront offers as facets.
// An empty list accepts any non-empty value for that facet.
type Vocabulary struct {
	Categories []string `json:"categories" mapstructure:"categories"`
	Brands     []string `json:"brands" mapstructure:"brands"`
}

// DefaultVocabulary is the storefront's built-in facet list.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: []string{"Electronics", "Home & Kitchen", "Fashion", "Groceries"},
		Brands:     []string{"Xiaomi", "Samsung", "OnePlus", "boAt", "Prestige", "Fabindia", "Tata", "Amul", "Nike"},
	}
}

func (v Vocabulary) KnowsCategory(category string) bool {
	return known(v.Categories, category)
}

func (v Vocabulary) KnowsBrand(brand string) bool {
	return known(v.Brands, brand)
}

func known(values []string, v string) bool {
	if v == "" {
		return false
	}
	return len(values) == 0 || slices.Contains(values, v)
}

// URLParams are the query parameters the listing page recognises.
type URLParams struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
}

// EditKind names the single criteria field a user edit targets.
type EditKind string

const (
	EditToggleCategory EditKind = "toggle-category"
	EditToggleBrand    EditKind = "toggle-brand"
	EditSetPriceRange  EditKind = "set-price-range"
	EditSetMinRating   EditKind = "set-min-rating"
	EditSetSort        EditKind = "set-sort"
	EditClearAll       EditKind = "clear-all"
)

// Edit is one discrete change made through the filter sidebar or sort dropdown.
// Value carries the category, brand or sort key; Min and Max the price bounds;
// Rating the rating floor.
type Edit struct {
	Kind   EditKind `json:"kind"`
	Value  string   `json:"value,omitempty"`
	Min    float64  `json:"min,omitempty"`
	Max    float64  `json:"max,omitempty"`
	Rating float64  `json:"rating,omitempty"`
}

// Origins gathers everything one recomputation may draw criteria from.
type Origins struct {
	Previous    Criteria
	URL         URLParams
	Edit        *Edit
	InitialLoad bool
}

const maxRating = 5.0

// Reconciler merges previous state, URL parameters and a user edit into one Criteria.
type Reconciler struct {
	vocabulary Vocabulary
}

func NewReconciler(vocabulary Vocabulary) *Reconciler {
	return &Reconciler{vocabulary: vocabulary}
}

func (r *Reconciler) Vocabulary() Vocabulary {
	return r.vocabulary
}

// Reconcile applies, in order: the previous criteria as the base, the URL category
// seed on initial load, the URL search term, then the single user edit.
// Values that are not recognised leave their field unchanged.
func (r *Reconciler) Reconcile(o Origins) Criteria {
	c := o.Previous.Clone()
	c.SortKey = resolveSortKey(c.SortKey)

	if o.InitialLoad && r.vocabulary.KnowsCategory(o.URL.Category) && !c.HasCategory(o.URL.Category) {
		c.Categories = append(c.Categories, o.URL.Category)
	}

	c.SearchTerm = o.URL.Search

	if o.Edit != nil {
		c = r.apply(c, *o.Edit)
	}
	return c
}

func (r *Reconciler) apply(c Criteria, e Edit) Criteria {
	switch e.Kind {
	case EditToggleCategory:
		if c.HasCategory(e.Value) || r.vocabulary.KnowsCategory(e.Value) {
			return c.WithCategoryToggled(e.Value)
		}
	case EditToggleBrand:
		if c.HasBrand(e.Value) || r.vocabulary.KnowsBrand(e.Value) {
			return c.WithBrandToggled(e.Value)
		}
	case EditSetPriceRange:
		if math.IsNaN(e.Min) || math.IsNaN(e.Max) {
			return c
		}
		pr := PriceRange{Min: e.Min, Max: e.Max}.Normalized()
		return c.WithPriceRange(pr.Min, pr.Max)
	case EditSetMinRating:
		if math.IsNaN(e.Rating) || e.Rating < 0 {
			return c
		}
		return c.WithMinRating(math.Min(e.Rating, maxRating))
	case EditSetSort:
		if key, ok := ParseSortKey(e.Value); ok {
			return c.WithSortKey(key)
		}
	case EditClearAll:
		return c.WithFacetsCleared()
	}
	return c
}
