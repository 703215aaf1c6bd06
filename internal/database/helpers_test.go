package database_test

import (
	"database/sql"

	"github.com/jonesrussell/tenderscan/internal/domain"
)

func errNoRows() error {
	return sql.ErrNoRows
}

func keyOf(portal, tenderID string) domain.Key {
	return domain.Key{Portal: portal, TenderID: tenderID}
}
