package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

func affectedRows(result sql.Result) (int64, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}

// handleStoreError maps Postgres error codes onto repository errors.
func handleStoreError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: %s", ErrStoreNotMigrated, pqErr.Message)
		case "22P02", "22032": // invalid_text_representation, invalid_json_text
			return fmt.Errorf("document rejected by store: %s", pqErr.Message)
		}
	}
	return err
}
