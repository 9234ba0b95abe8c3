package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// StorageRepository persists scoped key/value pairs.
type StorageRepository struct {
	db *sql.DB
}

// NewStorageRepository creates a new [StorageRepository] with the given database connection
func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value stored under scope/key and whether it exists.
func (r *StorageRepository) Get(scope, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM session_storage WHERE scope = ? AND key = ?`, scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value under scope/key.
func (r *StorageRepository) Set(scope, key, value string) error {
	query := `
		INSERT INTO session_storage (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, scope, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, key, err)
	}
	return nil
}

// Delete removes scope/key. Deleting a missing key is not an error.
func (r *StorageRepository) Delete(scope, key string) error {
	if _, err := r.db.Exec(`DELETE FROM session_storage WHERE scope = ? AND key = ?`, scope, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", scope, key, err)
	}
	return nil
}

// Scopes lists every scope holding at least one key.
func (r *StorageRepository) Scopes() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT scope FROM session_storage ORDER BY scope`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, fmt.Errorf("failed to scan scope: %w", err)
		}
		scopes = append(scopes, scope)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return scopes, nil
}
