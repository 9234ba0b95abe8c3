package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// ReleaseRepository implements [Repository] for [models.Release] persistence.
//
// Releases are returned without tasks; see [TaskRepository.ListByRelease].
type ReleaseRepository struct {
	db *sql.DB
}

// NewReleaseRepository creates a new [ReleaseRepository] with the given database connection
func NewReleaseRepository(db *sql.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

const releaseColumns = `id, user_id, title, type, release_date, description, cover_art, deleted`

func scanRelease(row rowScanner) (*models.Release, error) {
	var (
		release     models.Release
		releaseDate sql.NullTime
	)
	err := row.Scan(
		&release.ReleaseID, &release.UserID, &release.Title, &release.Type,
		&releaseDate, &release.Description, &release.CoverArt, &release.Deleted,
	)
	if err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		release.ReleaseDate = models.NewDate(releaseDate.Time)
	}
	return &release, nil
}

func nullDate(d models.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.UTC(), Valid: true}
}

// Create inserts a new release with the next sequence ID.
func (r *ReleaseRepository) Create(release *models.Release) error {
	if err := release.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id, err := NextSequence(r.db, "releases")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `INSERT INTO releases (` + releaseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	_, err = r.db.Exec(query,
		id, release.UserID, release.Title, release.Type,
		nullDate(release.ReleaseDate), release.Description, release.CoverArt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert release: %w", err)
	}

	release.ReleaseID = id
	release.Deleted = false
	return nil
}

// Get retrieves a release by ID, excluding soft-deleted releases
func (r *ReleaseRepository) Get(id int) (*models.Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases WHERE id = ? AND deleted = 0`

	release, err := scanRelease(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: release %d", shared.ErrReleaseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query release: %w", err)
	}
	return release, nil
}

// Update writes every editable field of release.
func (r *ReleaseRepository) Update(release *models.Release) error {
	if err := release.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE releases
		SET title = ?, type = ?, release_date = ?, description = ?, cover_art = ?
		WHERE id = ? AND deleted = 0
	`
	result, err := r.db.Exec(query,
		release.Title, release.Type, nullDate(release.ReleaseDate),
		release.Description, release.CoverArt, release.ReleaseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update release: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: release %d", shared.ErrReleaseNotFound, release.ReleaseID))
}

// Patch applies the set fields of patch to release id and returns the result.
func (r *ReleaseRepository) Patch(id int, patch models.ReleasePatch) (*models.Release, error) {
	release, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(release)
	if err := r.Update(release); err != nil {
		return nil, err
	}
	return release, nil
}

// Delete soft-deletes a release by ID
func (r *ReleaseRepository) Delete(id int) error {
	result, err := r.db.Exec(`UPDATE releases SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete release: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: release %d", shared.ErrReleaseNotFound, id))
}

// List retrieves all releases matching the given criteria, excluding soft-deleted releases
//
// Supported criteria: "user_id" (int).
func (r *ReleaseRepository) List(criteria map[string]any) ([]*models.Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases WHERE deleted = 0`
	args := []any{}

	if userID, ok := criteria["user_id"].(int); ok {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY release_date DESC, id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var releases []*models.Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, release)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return releases, nil
}

// ListByUser is List filtered to one owner.
func (r *ReleaseRepository) ListByUser(userID int) ([]*models.Release, error) {
	return r.List(map[string]any{"user_id": userID})
}

var _ Repository[*models.Release] = (*ReleaseRepository)(nil)
