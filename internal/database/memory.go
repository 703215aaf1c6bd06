package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

// MemoryStore is an in-memory TenderStore used by tests and by scan dry
// runs that have no database configured.
type MemoryStore struct {
	mu      sync.RWMutex
	tenders map[domain.Key]*domain.Tender
}

var _ TenderStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenders: make(map[domain.Key]*domain.Tender)}
}

// GetByKey returns the tender with the given identity key.
func (s *MemoryStore) GetByKey(_ context.Context, key domain.Key) (*domain.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tender, ok := s.tenders[key]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *tender
	return &clone, nil
}

// Apply performs the change-detection upsert.
func (s *MemoryStore) Apply(_ context.Context, tender *domain.Tender) (Outcome, error) {
	tender.ContentHash = tender.ComputeContentHash()
	tender.LastUpdated = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenders[tender.Key()]
	if !ok {
		clone := *tender
		s.tenders[tender.Key()] = &clone
		return OutcomeNew, nil
	}
	if existing.ContentHash == tender.ContentHash {
		return OutcomeUnchanged, nil
	}

	clone := *tender
	clone.IsActive = true
	s.tenders[tender.Key()] = &clone
	return OutcomeUpdated, nil
}

// MarkInactiveExpired flips is_active on every active tender whose closing
// date precedes now.
func (s *MemoryStore) MarkInactiveExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, tender := range s.tenders {
		if tender.IsActive && tender.ClosingDate != nil && tender.ClosingDate.Before(now) {
			tender.IsActive = false
			tender.LastUpdated = now.UTC()
			count++
		}
	}
	return count, nil
}

// List retrieves tenders with optional filtering, newest first.
func (s *MemoryStore) List(_ context.Context, filters ListFilters) ([]*domain.Tender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Tender
	for _, tender := range s.tenders {
		if filters.Portal != "" && tender.Portal != filters.Portal {
			continue
		}
		if filters.Priority != "" && string(tender.Priority) != filters.Priority {
			continue
		}
		if filters.Category != "" && !tender.Categories.Contains(filters.Category) {
			continue
		}
		if filters.ActiveOnly && !tender.IsActive {
			continue
		}
		if filters.Search != "" &&
			!strings.Contains(strings.ToLower(tender.Title), strings.ToLower(filters.Search)) {
			continue
		}
		clone := *tender
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastUpdated.After(matched[j].LastUpdated)
	})

	offset := filters.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetStats aggregates store counts.
func (s *MemoryStore) GetStats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		ByPriority: make(map[string]int),
		ByPortal:   make(map[string]int),
	}
	for _, tender := range s.tenders {
		stats.Total++
		if tender.IsActive {
			stats.Active++
		}
		stats.ByPriority[string(tender.Priority)]++
		stats.ByPortal[tender.Portal]++
	}
	return stats, nil
}
