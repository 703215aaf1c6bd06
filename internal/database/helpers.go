package database

import "database/sql"

// execRequireRows guards writes keyed by (portal, tender_id): a statement
// that affected zero rows means the tender vanished between lookup and
// write, reported as notFoundErr.
func execRequireRows(result sql.Result, err, notFoundErr error) error {
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundErr
	}

	return nil
}
