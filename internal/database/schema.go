package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the tenders table. (portal, tender_id) is the identity key.
const schema = `
CREATE TABLE IF NOT EXISTS tenders (
	portal           TEXT NOT NULL,
	tender_id        TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	organization     TEXT NOT NULL DEFAULT '',
	value            NUMERIC NOT NULL DEFAULT 0,
	closing_date     TIMESTAMPTZ,
	posted_date      TIMESTAMPTZ,
	description      TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	categories       JSONB NOT NULL DEFAULT '[]',
	keywords         JSONB NOT NULL DEFAULT '[]',
	matching_courses JSONB NOT NULL DEFAULT '[]',
	priority         TEXT NOT NULL DEFAULT 'low',
	url              TEXT NOT NULL DEFAULT '',
	documents_url    TEXT NOT NULL DEFAULT '',
	content_hash     TEXT NOT NULL,
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	last_updated     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (portal, tender_id)
);

CREATE INDEX IF NOT EXISTS idx_tenders_active_closing
	ON tenders (closing_date) WHERE is_active = TRUE;
CREATE INDEX IF NOT EXISTS idx_tenders_priority ON tenders (priority);
CREATE INDEX IF NOT EXISTS idx_tenders_last_updated ON tenders (last_updated DESC);
`

// EnsureSchema creates the tenders table and its indexes if absent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
