package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func names(products []*Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func homeSnapshot() Snapshot {
	return Refs([]Product{
		{ID: "1", Name: "Zen Fan", Category: "Home", Price: 500},
		{ID: "2", Name: "Air Cooler", Category: "Home", Price: 1500},
		{ID: "3", Name: "Phone X", Category: "Electronics", Price: 9000},
	})
}

func storefrontSnapshot() Snapshot {
	return Refs([]Product{
		{ID: "p1", Name: "Redmi Note 13", Brand: "Xiaomi", Category: "Electronics", Price: 17999, OriginalPrice: float(21999), Rating: 4.3, ReviewsCount: 5400, Description: "AMOLED phone"},
		{ID: "p2", Name: "Galaxy M34", Brand: "Samsung", Category: "Electronics", Price: 15999, Rating: 4.1, ReviewsCount: 8800},
		{ID: "p3", Name: "Airdopes 141", Brand: "boAt", Category: "Electronics", Price: 1299, DiscountPercentage: float(57), Rating: 3.9, ReviewsCount: 120000},
		{ID: "p4", Name: "Pressure Cooker 3L", Brand: "Prestige", Category: "Home & Kitchen", Price: 1899, Rating: 4.5, ReviewsCount: 3100},
		{ID: "p5", Name: "Cotton Kurta", Brand: "Fabindia", Category: "Fashion", Price: 1499, OriginalPrice: float(1999), Rating: 4.0, ReviewsCount: 640},
		{ID: "p6", Name: "Tata Salt 1kg", Brand: "Tata", Category: "Groceries", Price: 28, Rating: 4.6, ReviewsCount: 22000, Description: "iodised salt"},
		{ID: "p7", Name: "Amul Butter", Brand: "Amul", Category: "Groceries", Price: 56, Rating: 4.7, ReviewsCount: 22000},
		{ID: "p8", Name: "Steel Tiffin", Category: "Home & Kitchen", Price: 450, Rating: 3.5},
	})
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{
			name:     "category facet with price ascending",
			criteria: DefaultCriteria().WithCategories("Home").WithSortKey(SortPriceAsc),
			expected: []string{"Zen Fan", "Air Cooler"},
		},
		{
			name:     "search term is case insensitive",
			criteria: DefaultCriteria().WithSearchTerm("phone"),
			expected: []string{"Phone X"},
		},
		{
			name:     "price range is inclusive",
			criteria: DefaultCriteria().WithPriceRange(0, 1000),
			expected: []string{"Zen Fan"},
		},
		{
			name:     "rating floor above every record",
			criteria: DefaultCriteria().WithMinRating(4),
			expected: []string{},
		},
		{
			name:     "inverted price range",
			criteria: DefaultCriteria().WithPriceRange(2000, 100),
			expected: []string{},
		},
		{
			name:     "defaults return everything by name",
			criteria: DefaultCriteria(),
			expected: []string{"Air Cooler", "Phone X", "Zen Fan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(homeSnapshot(), tt.criteria)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, names(result))
		})
	}
}

func TestEvaluate_StableTies(t *testing.T) {
	snapshot := Refs([]Product{
		{ID: "a", Name: "Second", Price: 100},
		{ID: "b", Name: "First", Price: 100},
		{ID: "c", Name: "Cheap", Price: 10},
		{ID: "d", Name: "Another", Price: 100},
	})

	result := Evaluate(snapshot, DefaultCriteria().WithSortKey(SortPriceAsc))

	assert.Equal(t, []string{"Cheap", "Second", "First", "Another"}, names(result))
}

func TestEvaluate_SortKeys(t *testing.T) {
	tests := []struct {
		key      SortKey
		expected []string
	}{
		{SortPriceAsc, []string{"p6", "p7", "p8", "p3", "p5", "p4", "p2", "p1"}},
		{SortPriceDesc, []string{"p1", "p2", "p4", "p5", "p3", "p8", "p7", "p6"}},
		{SortRatingDesc, []string{"p7", "p6", "p4", "p1", "p2", "p5", "p3", "p8"}},
		// p3 explicit 57%, p5 derived 25%, p1 derived ~18%
		{SortDiscountDesc, []string{"p3", "p5", "p1", "p2", "p4", "p6", "p7", "p8"}},
		{SortPopularityDesc, []string{"p3", "p6", "p7", "p2", "p1", "p4", "p5", "p8"}},
		{SortNameAsc, []string{"p3", "p7", "p5", "p2", "p4", "p1", "p8", "p6"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			result := Evaluate(storefrontSnapshot(), DefaultCriteria().WithSortKey(tt.key))
			ids := make([]string, 0, len(result))
			for _, p := range result {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestEvaluate_LegacyAndUnknownSortKeys(t *testing.T) {
	snapshot := homeSnapshot()

	legacy := Evaluate(snapshot, DefaultCriteria().WithSortKey("price-high"))
	assert.Equal(t, []string{"Phone X", "Air Cooler", "Zen Fan"}, names(legacy))

	unknown := Evaluate(snapshot, DefaultCriteria().WithSortKey("relevance"))
	assert.Equal(t, []string{"Air Cooler", "Phone X", "Zen Fan"}, names(unknown))
}

func TestEvaluate_Determinism(t *testing.T) {
	snapshot := storefrontSnapshot()
	criteria := []Criteria{
		DefaultCriteria(),
		DefaultCriteria().WithSortKey(SortPopularityDesc),
		DefaultCriteria().WithCategories("Electronics", "Groceries").WithSortKey(SortRatingDesc),
		DefaultCriteria().WithSearchTerm("o").WithMinRating(4),
	}

	for _, c := range criteria {
		first := Evaluate(snapshot, c)
		second := Evaluate(snapshot, c.Clone())
		assert.Equal(t, first, second)
	}
}

func TestEvaluate_StableSortIdempotence(t *testing.T) {
	for _, key := range SortKeys {
		c := DefaultCriteria().WithSortKey(key)
		once := Evaluate(storefrontSnapshot(), c)
		twice := Evaluate(Snapshot(once), c)
		assert.Equal(t, once, twice, "key %s", key)
	}
}

func TestEvaluate_FacetMonotonicity(t *testing.T) {
	snapshot := storefrontSnapshot()
	pairs := []struct {
		name   string
		narrow Criteria
		wide   Criteria
	}{
		{
			name:   "add brand",
			narrow: DefaultCriteria().WithBrands("Tata"),
			wide:   DefaultCriteria().WithBrands("Tata", "Amul"),
		},
		{
			name:   "add category",
			narrow: DefaultCriteria().WithCategories("Fashion"),
			wide:   DefaultCriteria().WithCategories("Fashion", "Electronics"),
		},
		{
			name:   "widen price",
			narrow: DefaultCriteria().WithPriceRange(100, 2000),
			wide:   DefaultCriteria().WithPriceRange(0, 20000),
		},
		{
			name:   "lower rating floor",
			narrow: DefaultCriteria().WithMinRating(4.5),
			wide:   DefaultCriteria().WithMinRating(4),
		},
		{
			name:   "drop search term",
			narrow: DefaultCriteria().WithSearchTerm("salt"),
			wide:   DefaultCriteria(),
		},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			narrow := Evaluate(snapshot, tt.narrow)
			wide := Evaluate(snapshot, tt.wide)
			require.NotEmpty(t, narrow)
			assert.GreaterOrEqual(t, len(wide), len(narrow))
			for _, p := range narrow {
				assert.Contains(t, wide, p)
			}
		})
	}
}

func TestEvaluate_DoesNotMutateSnapshot(t *testing.T) {
	snapshot := storefrontSnapshot()
	before := append(Snapshot(nil), snapshot...)

	result := Evaluate(snapshot, DefaultCriteria().WithSortKey(SortPriceDesc))

	assert.Equal(t, before, snapshot)
	require.NotEmpty(t, result)
	assert.Same(t, snapshot[0], result[0])
}

func TestEvaluate_EmptySnapshot(t *testing.T) {
	result := Evaluate(nil, DefaultCriteria())
	require.NotNil(t, result)
	assert.Empty(t, result)
}

func TestCompile_ANDComposition(t *testing.T) {
	c := DefaultCriteria().
		WithSearchTerm("kurta").
		WithCategories("Fashion").
		WithBrands("Fabindia").
		WithPriceRange(1000, 2000).
		WithMinRating(4)
	match := Compile(c)

	base := Product{Name: "Cotton Kurta", Brand: "Fabindia", Category: "Fashion", Price: 1499, Rating: 4.0}
	assert.True(t, match(&base))

	failOne := map[string]func(p *Product){
		"search":   func(p *Product) { p.Name = "Cotton Shirt" },
		"category": func(p *Product) { p.Category = "Groceries" },
		"brand":    func(p *Product) { p.Brand = "Nike" },
		"price":    func(p *Product) { p.Price = 2000.01 },
		"rating":   func(p *Product) { p.Rating = 3.9 },
	}
	for facet, mutate := range failOne {
		t.Run(facet, func(t *testing.T) {
			p := base
			mutate(&p)
			assert.False(t, match(&p))
		})
	}
}

func TestCompile_SearchFields(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		product Product
		match   bool
	}{
		{"name", "NOTE", Product{Name: "Redmi Note 13"}, true},
		{"brand", "xiao", Product{Name: "Phone", Brand: "Xiaomi"}, true},
		{"category", "kitchen", Product{Name: "Pan", Category: "Home & Kitchen"}, true},
		{"description", "iodised", Product{Name: "Salt", Description: "Iodised salt"}, true},
		{"missing optional fields", "samsung", Product{Name: "Tiffin", Category: "Home & Kitchen"}, false},
		{"blank term is no restriction", "   ", Product{Name: "Anything"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := Compile(DefaultCriteria().WithSearchTerm(tt.term))
			assert.Equal(t, tt.match, match(&tt.product))
		})
	}
}

func TestCompile_BrandFacetExcludesMissingBrand(t *testing.T) {
	match := Compile(DefaultCriteria().WithBrands("Prestige"))

	assert.False(t, match(&Product{Name: "Steel Tiffin", Category: "Home & Kitchen"}))
	assert.True(t, match(&Product{Name: "Cooker", Brand: "Prestige"}))
}

func TestCompile_PriceBoundsInclusive(t *testing.T) {
	match := Compile(DefaultCriteria().WithPriceRange(100, 200))

	assert.True(t, match(&Product{Price: 100}))
	assert.True(t, match(&Product{Price: 200}))
	assert.False(t, match(&Product{Price: 99.99}))
	assert.False(t, match(&Product{Price: 200.5}))
}

func TestComparatorFor_NameIsLocaleAware(t *testing.T) {
	snapshot := Refs([]Product{
		{Name: "banana"},
		{Name: "Cherry"},
		{Name: "Apple"},
	})

	result := Evaluate(snapshot, DefaultCriteria())

	assert.Equal(t, []string{"Apple", "banana", "Cherry"}, names(result))
}

func TestList(t *testing.T) {
	listing := List(homeSnapshot(), DefaultCriteria().WithSearchTerm("fan").WithSortKey("price-low"))

	assert.Equal(t, 1, listing.ShownCount)
	assert.Equal(t, 3, listing.TotalCount)
	assert.Equal(t, "fan", listing.SearchTerm)
	assert.Equal(t, SortPriceAsc, listing.SortKey)
	assert.Equal(t, []string{"Zen Fan"}, names(listing.Products))
}

func TestProduct_Discount(t *testing.T) {
	assert.Equal(t, 57.0, (&Product{Price: 10, DiscountPercentage: float(57)}).Discount())
	assert.InDelta(t, 25.0, (&Product{Price: 75, OriginalPrice: float(100)}).Discount(), 1e-9)
	assert.Equal(t, 0.0, (&Product{Price: 120, OriginalPrice: float(100)}).Discount())
	assert.Equal(t, 0.0, (&Product{Price: 100}).Discount())
}
