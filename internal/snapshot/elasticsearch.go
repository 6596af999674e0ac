package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"storefront-workers/internal/catalog"
)

// ElasticsearchSource reads every document of the product index in index order.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	index   string
	maxSize int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, maxSize int) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index, maxSize: maxSize}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type indexNotFoundError struct {
	index string
}

func (e *indexNotFoundError) Error() string { return ErrIndexNotFound.Error() + ": " + e.index }

func (e *indexNotFoundError) Is(target error) bool { return target == ErrIndexNotFound }

func (s *ElasticsearchSource) buildRequest() *esapi.SearchRequest {
	size := s.maxSize
	return &esapi.SearchRequest{
		Index:          []string{s.index},
		Body:           strings.NewReader(`{"query":{"match_all":{}}}`),
		Size:           &size,
		Sort:           []string{"_doc"},
		TrackTotalHits: false,
	}
}

func (s *ElasticsearchSource) Load(ctx context.Context) (catalog.Snapshot, error) {
	res, err := s.buildRequest().Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", ErrSnapshotLoad, s.index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, &indexNotFoundError{index: s.index}
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: %s", ErrSnapshotLoad, s.index, res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: search response: %v", ErrSnapshotDecode, err)
	}

	products := make([]catalog.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		var p catalog.Product
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", ErrSnapshotDecode, hit.ID, err)
		}
		if p.ID == "" {
			p.ID = hit.ID
		}
		products = append(products, p)
	}

	return catalog.Refs(products), nil
}
