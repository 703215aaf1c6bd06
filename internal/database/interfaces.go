package database

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

// Common errors returned by the tender store.
var (
	// ErrNotFound is returned when no tender matches the given key.
	ErrNotFound = errors.New("tender not found")
)

// Outcome reports what an Apply call did.
type Outcome int

const (
	// OutcomeUnchanged means the stored hash matched; nothing was written.
	OutcomeUnchanged Outcome = iota
	// OutcomeNew means a new row was inserted.
	OutcomeNew
	// OutcomeUpdated means an existing row's mutable fields were overwritten.
	OutcomeUpdated
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// ListFilters represents filtering options for listing tenders.
type ListFilters struct {
	Portal     string
	Priority   string
	Category   string
	ActiveOnly bool
	Search     string // title search
	Limit      int
	Offset     int
}

// Stats aggregates store counts for the query API.
type Stats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	ByPriority map[string]int `json:"by_priority"`
	ByPortal   map[string]int `json:"by_portal"`
}

// TenderStore defines the contract the persistence layer must expose.
// Apply is the change-detection upsert; MarkInactiveExpired is the per-cycle
// sweep. Neither hard-deletes.
type TenderStore interface {
	// GetByKey returns the tender with the given identity key, or ErrNotFound.
	GetByKey(ctx context.Context, key domain.Key) (*domain.Tender, error)
	// Apply inserts the tender if absent, overwrites its mutable fields if
	// the content hash differs, and does nothing if the hash matches.
	Apply(ctx context.Context, tender *domain.Tender) (Outcome, error)
	// MarkInactiveExpired flips is_active to false on every active tender
	// whose closing date precedes now. Returns how many rows changed.
	MarkInactiveExpired(ctx context.Context, now time.Time) (int, error)
	// List retrieves tenders with optional filtering.
	List(ctx context.Context, filters ListFilters) ([]*domain.Tender, error)
	// GetStats aggregates store counts.
	GetStats(ctx context.Context) (*Stats, error)
}
