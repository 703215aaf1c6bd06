package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

const defaultListLimit = 50

// TenderRepository is the PostgreSQL tender store.
type TenderRepository struct {
	db *sqlx.DB
}

var _ TenderStore = (*TenderRepository)(nil)

// NewTenderRepository creates a new tender repository.
func NewTenderRepository(db *sqlx.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

const tenderColumns = `portal, tender_id, title, organization, value,
	closing_date, posted_date, description, location, categories, keywords,
	matching_courses, priority, url, documents_url, content_hash, is_active,
	last_updated`

// GetByKey returns the tender with the given identity key.
func (r *TenderRepository) GetByKey(ctx context.Context, key domain.Key) (*domain.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tenders WHERE portal = $1 AND tender_id = $2`

	var tender domain.Tender
	err := r.db.GetContext(ctx, &tender, query, key.Portal, key.TenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tender: %w", err)
	}
	return &tender, nil
}

// Apply performs the change-detection upsert. The content hash is computed
// here so callers cannot desynchronize hash and fields. A rare concurrent
// insert on the same key is absorbed with a single retry.
func (r *TenderRepository) Apply(ctx context.Context, tender *domain.Tender) (Outcome, error) {
	tender.ContentHash = tender.ComputeContentHash()
	tender.LastUpdated = time.Now().UTC()

	outcome, err := r.apply(ctx, tender)
	if errors.Is(err, errConcurrentInsert) {
		outcome, err = r.apply(ctx, tender)
	}
	return outcome, err
}

// errConcurrentInsert signals that another writer inserted the key between
// our lookup and insert.
var errConcurrentInsert = errors.New("concurrent insert on tender key")

func (r *TenderRepository) apply(ctx context.Context, tender *domain.Tender) (Outcome, error) {
	var existingHash string
	err := r.db.GetContext(ctx,
		&existingHash,
		`SELECT content_hash FROM tenders WHERE portal = $1 AND tender_id = $2`,
		tender.Portal, tender.TenderID,
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r.insert(ctx, tender)
	case err != nil:
		return OutcomeUnchanged, fmt.Errorf("failed to look up tender: %w", err)
	case existingHash == tender.ContentHash:
		return OutcomeUnchanged, nil
	default:
		return r.update(ctx, tender)
	}
}

func (r *TenderRepository) insert(ctx context.Context, tender *domain.Tender) (Outcome, error) {
	query := `
		INSERT INTO tenders (` + tenderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (portal, tender_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		tender.Portal, tender.TenderID, tender.Title, tender.Organization,
		tender.Value, tender.ClosingDate, tender.PostedDate, tender.Description,
		tender.Location, tender.Categories, tender.Keywords,
		tender.MatchingCourses, tender.Priority, tender.URL,
		tender.DocumentsURL, tender.ContentHash, tender.IsActive,
		tender.LastUpdated,
	)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to insert tender: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return OutcomeUnchanged, err
	}
	if n == 0 {
		return OutcomeUnchanged, errConcurrentInsert
	}
	return OutcomeNew, nil
}

func (r *TenderRepository) update(ctx context.Context, tender *domain.Tender) (Outcome, error) {
	// A re-observed tender is active again regardless of prior sweeps; the
	// next sweep re-expires it if the closing date still lies in the past.
	query := `
		UPDATE tenders SET
			title = $3, organization = $4, value = $5, closing_date = $6,
			posted_date = $7, description = $8, location = $9, categories = $10,
			keywords = $11, matching_courses = $12, priority = $13, url = $14,
			documents_url = $15, content_hash = $16, is_active = TRUE,
			last_updated = $17
		WHERE portal = $1 AND tender_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		tender.Portal, tender.TenderID, tender.Title, tender.Organization,
		tender.Value, tender.ClosingDate, tender.PostedDate, tender.Description,
		tender.Location, tender.Categories, tender.Keywords,
		tender.MatchingCourses, tender.Priority, tender.URL,
		tender.DocumentsURL, tender.ContentHash, tender.LastUpdated,
	)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to update tender: %w", err)
	}
	return OutcomeUpdated, execRequireRows(result, nil, ErrNotFound)
}

// MarkInactiveExpired flips is_active on every active tender whose closing
// date has passed. Runs once per scan cycle, not per record.
func (r *TenderRepository) MarkInactiveExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tenders SET is_active = FALSE, last_updated = $1
		 WHERE is_active = TRUE AND closing_date IS NOT NULL AND closing_date < $1`,
		now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire tenders: %w", err)
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// List retrieves tenders with optional filtering, newest first.
func (r *TenderRepository) List(ctx context.Context, filters ListFilters) ([]*domain.Tender, error) {
	whereClauses := []string{}
	args := []any{}
	argIndex := 1

	if filters.Portal != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("portal = $%d", argIndex))
		args = append(args, filters.Portal)
		argIndex++
	}
	if filters.Priority != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, filters.Priority)
		argIndex++
	}
	if filters.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("categories::jsonb ? $%d", argIndex))
		args = append(args, filters.Category)
		argIndex++
	}
	if filters.ActiveOnly {
		whereClauses = append(whereClauses, "is_active = TRUE")
	}
	if filters.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("title ILIKE $%d", argIndex))
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}

	query := `SELECT ` + tenderColumns + ` FROM tenders`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY last_updated DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	var tenders []*domain.Tender
	if err := r.db.SelectContext(ctx, &tenders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}
	return tenders, nil
}

// GetStats aggregates store counts.
func (r *TenderRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByPriority: make(map[string]int),
		ByPortal:   make(map[string]int),
	}

	err := r.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM tenders`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenders: %w", err)
	}
	err = r.db.GetContext(ctx, &stats.Active,
		`SELECT COUNT(*) FROM tenders WHERE is_active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("failed to count active tenders: %w", err)
	}

	if err := r.countGrouped(ctx, "priority", stats.ByPriority); err != nil {
		return nil, err
	}
	if err := r.countGrouped(ctx, "portal", stats.ByPortal); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *TenderRepository) countGrouped(ctx context.Context, column string, out map[string]int) error {
	// column is one of two fixed identifiers, never user input.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM tenders GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("failed to count tenders by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}
