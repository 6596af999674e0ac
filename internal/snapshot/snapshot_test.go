package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-workers/internal/catalog"
	apperrors "storefront-workers/internal/common/errors"
	"storefront-workers/internal/common/logger"
)

func fixtureProducts() []catalog.Product {
	mrp := 24999.0
	return []catalog.Product{
		{ID: "p1", Name: "Redmi Note 13", Brand: "Xiaomi", Category: "Electronics", Price: 17999, OriginalPrice: &mrp, Rating: 4.3, ReviewsCount: 1200},
		{ID: "p2", Name: "Pressure Cooker", Brand: "Prestige", Category: "Home & Kitchen", Price: 2199, Rating: 4.6, ReviewsCount: 860},
	}
}

// countingSource counts loads and returns a fixed result.
type countingSource struct {
	snap  catalog.Snapshot
	err   error
	calls int
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Load(ctx context.Context) (catalog.Snapshot, error) {
	c.calls++
	return c.snap, c.err
}

// ==========================
// Static
// ==========================

func TestStatic_Load(t *testing.T) {
	products := fixtureProducts()
	src := NewStatic(products)
	products[0].Name = "changed"

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "Redmi Note 13", snap[0].Name)
	assert.Equal(t, "static", src.Name())
}

func TestStatic_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStatic(fixtureProducts()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStaticFromFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "products.json")
	raw, err := json.Marshal(fixtureProducts())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, raw, 0o600))

	src, err := NewStaticFromFile(good)
	require.NoError(t, err)
	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)
	require.NotNil(t, snap[0].OriginalPrice)
	assert.Equal(t, 24999.0, *snap[0].OriginalPrice)

	bad := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":`), 0o600))
	_, err = NewStaticFromFile(bad)
	assert.ErrorIs(t, err, ErrSnapshotDecode)

	_, err = NewStaticFromFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrSnapshotLoad)

	empty, err := NewStaticFromFile("")
	require.NoError(t, err)
	snap, err = empty.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

// ==========================
// Postgres
// ==========================

var productColumns = []string{
	"id", "name", "brand", "category", "price", "original_price", "discount_percentage",
	"rating", "reviews_count", "description", "image_url",
}

func TestPostgresSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productColumns).
		AddRow("p1", "Redmi Note 13", "Xiaomi", "Electronics", 17999.0, 24999.0, nil, 4.3, 1200, "AMOLED display", "https://img/p1.jpg").
		AddRow("p2", "Toor Dal", nil, "Groceries", 189.0, nil, 10.0, 0.0, 0, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "products"`)).
		WithArgs(500).
		WillReturnRows(rows)

	snap, err := NewPostgresSource(db, "products", 500).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)

	assert.Equal(t, "Xiaomi", snap[0].Brand)
	require.NotNil(t, snap[0].OriginalPrice)
	assert.Equal(t, 24999.0, *snap[0].OriginalPrice)
	assert.Nil(t, snap[0].DiscountPercentage)
	assert.Equal(t, "https://img/p1.jpg", snap[0].Image)

	assert.Empty(t, snap[1].Brand)
	assert.Nil(t, snap[1].OriginalPrice)
	require.NotNil(t, snap[1].DiscountPercentage)
	assert.Equal(t, 10.0, snap[1].Discount())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QuotesTableName(t *testing.T) {
	assert.Contains(t, productsQuery(`catalog"; DROP TABLE x`), `FROM "catalog""; DROP TABLE x"`)
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err = NewPostgresSource(db, "products", 10).Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotLoad)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestPostgresSource_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(productColumns).
		AddRow("p1", "Kurta", "Fabindia", "Fashion", "not-a-price", nil, nil, 4.0, 3, nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	_, err = NewPostgresSource(db, "products", 10).Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotDecode)
}

// ==========================
// Elasticsearch
// ==========================

func newFakeIndex(t *testing.T, status int, body string) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/products/_search", r.URL.Path)
		assert.Equal(t, "_doc", r.URL.Query().Get("sort"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSource_Load(t *testing.T) {
	body := `{"hits":{"hits":[
		{"_id":"doc-1","_source":{"name":"Air Zoom","brand":"Nike","category":"Fashion","price":7995,"rating":4.4,"reviews_count":310}},
		{"_id":"doc-2","_source":{"id":"p9","name":"Amul Butter","brand":"Amul","category":"Groceries","price":56}}
	]}}`

	snap, err := NewElasticsearchSource(newFakeIndex(t, http.StatusOK, body), "products", 100).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 2)

	assert.Equal(t, "doc-1", snap[0].ID)
	assert.Equal(t, 310, snap[0].ReviewsCount)
	assert.Equal(t, "p9", snap[1].ID)
}

func TestElasticsearchSource_Errors(t *testing.T) {
	_, err := NewElasticsearchSource(newFakeIndex(t, http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`), "products", 10).
		Load(context.Background())
	assert.ErrorIs(t, err, ErrIndexNotFound)

	_, err = NewElasticsearchSource(newFakeIndex(t, http.StatusInternalServerError, `{}`), "products", 10).
		Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotLoad)

	_, err = NewElasticsearchSource(newFakeIndex(t, http.StatusOK, `{"hits":{"hits":[{"_id":"x","_source":{"price":"free"}}]}}`), "products", 10).
		Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotDecode)
}

// ==========================
// Cache
// ==========================

func TestCachedSource_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	inner := &countingSource{snap: catalog.Refs(fixtureProducts())}
	cached := NewCachedSource(inner, rdb, "catalog:snapshot", time.Minute, logger.NewTestLogger(t))

	first, err := cached.Load(context.Background())
	require.NoError(t, err)
	second, err := cached.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, *first[i], *second[i])
	}
	assert.True(t, mr.Exists("catalog:snapshot"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:snapshot"))

	require.NoError(t, cached.Invalidate(context.Background()))
	_, err = cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_CorruptEntryIsReplaced(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("catalog:snapshot", "{not json"))

	inner := &countingSource{snap: catalog.Refs(fixtureProducts())}
	snap, err := NewCachedSource(inner, rdb, "catalog:snapshot", time.Minute, logger.NewNoOpLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, 1, inner.calls)

	stored, err := mr.Get("catalog:snapshot")
	require.NoError(t, err)
	assert.Contains(t, stored, "Redmi Note 13")
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("catalog:snapshot").SetErr(errors.New("connection refused"))

	inner := &countingSource{snap: catalog.Refs(fixtureProducts())}
	snap, err := NewCachedSource(inner, rdb, "catalog:snapshot", 30*time.Second, logger.NewNoOpLogger()).Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_InnerErrorNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("catalog:snapshot").RedisNil()

	inner := &countingSource{err: ErrSnapshotLoad}
	_, err := NewCachedSource(inner, rdb, "catalog:snapshot", time.Minute, logger.NewNoOpLogger()).Load(context.Background())

	assert.ErrorIs(t, err, ErrSnapshotLoad)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Instrumented
// ==========================

// blockingSource waits for the context to end.
type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) Load(ctx context.Context) (catalog.Snapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestInstrumented_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   Source
		timeout  time.Duration
		expected apperrors.ErrorCode
	}{
		{"timeout", blockingSource{}, 10 * time.Millisecond, apperrors.ErrCodeSnapshotTimeout},
		{"load failure", &countingSource{err: errors.New("dial tcp: refused")}, time.Second, apperrors.ErrCodeSnapshotLoadFailed},
		{"decode failure", &countingSource{err: ErrSnapshotDecode}, time.Second, apperrors.ErrCodeSnapshotDecodeFailed},
		{"missing index", &countingSource{err: &indexNotFoundError{index: "products"}}, time.Second, apperrors.ErrCodeIndexNotFound},
		{"standard error passes through", &countingSource{err: apperrors.NewCacheUnavailableError(errors.New("down"))}, time.Second, apperrors.ErrCodeCacheUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstrumented(tt.source, tt.timeout, nil).Load(context.Background())
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.expected, stdErr.Code)
		})
	}
}

func TestInstrumented_Success(t *testing.T) {
	src := NewInstrumented(NewStatic(fixtureProducts()), time.Second, nil)

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, "static", src.Name())
}
