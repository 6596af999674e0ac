package api

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"storefront-workers/internal/catalog"
	"storefront-workers/internal/common/errors"
	"storefront-workers/internal/common/metrics"
	reconcilecriteria "storefront-workers/internal/workers/catalog/reconcile-criteria"
	"storefront-workers/pkg/registry"
)

const maxRequestBody = 1 << 20

type listingResponse struct {
	EvaluationID string             `json:"evaluationId"`
	Criteria     catalog.Criteria   `json:"criteria"`
	Products     []*catalog.Product `json:"products"`
	ShownCount   int                `json:"shownCount"`
	TotalCount   int                `json:"totalCount"`
	SearchTerm   string             `json:"searchTerm,omitempty"`
	SortKey      catalog.SortKey    `json:"sortKey"`
}

// handleListProducts treats search and the first category as the page URL and
// every other parameter as a sidebar edit applied on top, in a fixed order.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(s.reconciler, r.URL.Query())
	if err != nil {
		s.respondError(w, err)
		return
	}

	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		s.respondError(w, err)
		return
	}

	ctx, span := s.obs.StartSpan(r.Context(), "listing.evaluate", attribute.String("caller", "http"))
	defer span.End()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	start := time.Now()
	listing := catalog.List(snap, criteria)
	elapsed := time.Since(start)

	metrics.ListingEvaluations.WithLabelValues("http", string(listing.SortKey)).Inc()
	metrics.ListingResultSize.Observe(float64(listing.ShownCount))
	s.obs.RecordEvaluation(ctx, string(listing.SortKey), listing.ShownCount, elapsed)

	products := listing.Products
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}

	s.respondJSON(w, http.StatusOK, listingResponse{
		EvaluationID: uuid.NewString(),
		Criteria:     criteria,
		Products:     products,
		ShownCount:   listing.ShownCount,
		TotalCount:   listing.TotalCount,
		SearchTerm:   listing.SearchTerm,
		SortKey:      listing.SortKey,
	})
}

func (s *Server) loadSnapshot(ctx context.Context) (catalog.Snapshot, error) {
	if s.source == nil {
		return nil, errors.NewSnapshotLoadFailedError("none", fmt.Errorf("no snapshot source configured"))
	}
	return s.source.Load(ctx)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, catalog.Facets(snap, s.reconciler.Vocabulary()))
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.respondError(w, errors.NewParseError(err))
		return
	}

	input, err := reconcilecriteria.ParseInput(body)
	if err != nil {
		s.respondError(w, err)
		return
	}

	output, err := s.reconcile.Execute(r.Context(), input)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, output)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, registry.Default())
}

// criteriaFromQuery reconciles the query string from default criteria. The page URL
// carries search and category; brand, extra category, price, rating and sort
// parameters arrive as edits.
func criteriaFromQuery(r *catalog.Reconciler, q url.Values) (catalog.Criteria, error) {
	categories := nonEmpty(q["category"])
	urlParams := catalog.URLParams{Search: q.Get("search")}
	if len(categories) > 0 {
		urlParams.Category = categories[0]
	}

	edits, err := editsFromQuery(q, categories)
	if err != nil {
		return catalog.Criteria{}, err
	}

	c := r.Reconcile(catalog.Origins{
		Previous:    catalog.DefaultCriteria(),
		URL:         urlParams,
		InitialLoad: true,
	})
	for i := range edits {
		c = r.Reconcile(catalog.Origins{Previous: c, URL: urlParams, Edit: &edits[i]})
	}
	return c, nil
}

func editsFromQuery(q url.Values, categories []string) ([]catalog.Edit, error) {
	var edits []catalog.Edit

	for _, category := range categories[min(1, len(categories)):] {
		edits = append(edits, catalog.Edit{Kind: catalog.EditToggleCategory, Value: category})
	}
	for _, brand := range nonEmpty(q["brand"]) {
		edits = append(edits, catalog.Edit{Kind: catalog.EditToggleBrand, Value: brand})
	}

	if q.Has("minPrice") || q.Has("maxPrice") {
		lo, err := floatParam(q, "minPrice", 0)
		if err != nil {
			return nil, err
		}
		hi, err := floatParam(q, "maxPrice", math.MaxFloat64)
		if err != nil {
			return nil, err
		}
		edits = append(edits, catalog.Edit{Kind: catalog.EditSetPriceRange, Min: lo, Max: hi})
	}

	if q.Has("minRating") {
		rating, err := floatParam(q, "minRating", 0)
		if err != nil {
			return nil, err
		}
		edits = append(edits, catalog.Edit{Kind: catalog.EditSetMinRating, Rating: rating})
	}

	if sort := q.Get("sort"); sort != "" {
		edits = append(edits, catalog.Edit{Kind: catalog.EditSetSort, Value: sort})
	}
	return edits, nil
}

// nonEmpty trims values and drops blanks and repeats; each remaining value becomes one toggle.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func floatParam(q url.Values, name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.NewInvalidCriteriaError(fmt.Sprintf("%s: %q is not a number", name, raw))
	}
	return v, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.NewInvalidCriteriaError(fmt.Sprintf("%s: %q is not a non-negative integer", name, raw))
	}
	return v, nil
}
