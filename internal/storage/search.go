// Package storage mirrors committed tenders into Elasticsearch so the API
// can serve full-text search. The relational store stays authoritative;
// losing the search index loses nothing but search.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

const defaultSearchLimit = 25

// tenderMapping types the searchable fields. Identity and facet fields are
// keywords; free text is analyzed.
const tenderMapping = `{
	"mappings": {
		"properties": {
			"portal":           {"type": "keyword"},
			"tender_id":        {"type": "keyword"},
			"title":            {"type": "text"},
			"organization":     {"type": "text"},
			"description":      {"type": "text"},
			"location":         {"type": "text"},
			"categories":       {"type": "keyword"},
			"keywords":         {"type": "keyword"},
			"matching_courses": {"type": "keyword"},
			"priority":         {"type": "keyword"},
			"value":            {"type": "double"},
			"closing_date":     {"type": "date"},
			"posted_date":      {"type": "date"},
			"last_updated":     {"type": "date"},
			"is_active":        {"type": "boolean"}
		}
	}
}`

// SearchIndexer writes tenders to an Elasticsearch index and queries them.
type SearchIndexer struct {
	client *es.Client
	index  string
	logger logger.Interface
}

// NewSearchIndexer connects to the configured cluster. Call EnsureIndex
// before the first write.
func NewSearchIndexer(cfg *config.SearchConfig, log logger.Interface) (*SearchIndexer, error) {
	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	return &SearchIndexer{
		client: client,
		index:  cfg.Index,
		logger: log.WithComponent("search"),
	}, nil
}

// EnsureIndex creates the tender index with its mapping if it is missing.
func (s *SearchIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("checking index %s: %w", s.index, err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == 200 {
		return nil
	}

	res, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(tenderMapping)),
	)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("creating index %s: %s", s.index, res.String())
	}

	s.logger.Info("search index created", "index", s.index)

	return nil
}

// Index writes one batch of tenders. Documents are keyed by portal and
// tender ID, so re-indexing an observed tender overwrites in place.
func (s *SearchIndexer) Index(ctx context.Context, tenders []domain.Tender) error {
	for i := range tenders {
		t := &tenders[i]

		body, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding tender %s: %w", t.TenderID, err)
		}

		res, err := s.client.Index(
			s.index,
			bytes.NewReader(body),
			s.client.Index.WithContext(ctx),
			s.client.Index.WithDocumentID(docID(t)),
		)
		if err != nil {
			return fmt.Errorf("indexing tender %s: %w", t.TenderID, err)
		}

		if res.IsError() {
			msg := res.String()
			res.Body.Close()
			return fmt.Errorf("indexing tender %s: %s", t.TenderID, msg)
		}
		res.Body.Close()
	}

	s.logger.Debug("tenders indexed", "count", len(tenders), "index", s.index)

	return nil
}

// Search runs a full-text query over title, description, and organization.
func (s *SearchIndexer) Search(ctx context.Context, query string, limit int) ([]domain.Tender, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	body := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "description", "organization"},
			},
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("searching %s: %s", s.index, res.String())
	}

	var payload struct {
		Hits struct {
			Hits []struct {
				Source domain.Tender `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	tenders := make([]domain.Tender, 0, len(payload.Hits.Hits))
	for _, hit := range payload.Hits.Hits {
		tenders = append(tenders, hit.Source)
	}

	return tenders, nil
}

// docID keys a document by tender identity, matching the store's key.
func docID(t *domain.Tender) string {
	return t.Portal + ":" + t.TenderID
}
