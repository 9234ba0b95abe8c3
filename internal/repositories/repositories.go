// package repositories provides persistence layer implementations for all model types.
//
// Each entity repository implements [Repository] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation.
package repositories

import (
	"database/sql"
	"fmt"
)

// Repository defines the data access operations shared by the entity repositories.
type Repository[T any] interface {
	Create(model T) error                      // Create inserts a new model and assigns its ID
	Get(id int) (T, error)                     // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model
	Delete(id int) error                       // Delete soft-deletes a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// rowScanner is satisfied by [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Entity IDs are taken from the sequence so they stay small, readable integers.
// Call it before opening any other transaction: in-memory databases hold a single connection.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// affectedOne turns a zero-row result into err.
func affectedOne(result sql.Result, err error) error {
	rows, rerr := result.RowsAffected()
	if rerr != nil {
		return fmt.Errorf("failed to get affected rows: %w", rerr)
	}
	if rows == 0 {
		return err
	}
	return nil
}
