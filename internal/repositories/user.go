package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// UserRepository implements [Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, created_at, last_active_at, deleted`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user         models.User
		createdAt    time.Time
		lastActiveAt time.Time
	)
	if err := row.Scan(&user.UserID, &user.Name, &createdAt, &lastActiveAt, &user.Deleted); err != nil {
		return nil, err
	}
	user.CreatedDate = models.NewDate(createdAt)
	user.LastActiveDate = models.NewDate(lastActiveAt)
	return &user, nil
}

// Create inserts a new user with the next sequence ID.
func (r *UserRepository) Create(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, 0)`
	if _, err := r.db.Exec(query, id, user.Name, now, now); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.UserID = id
	user.CreatedDate = models.NewDate(now)
	user.LastActiveDate = models.NewDate(now)
	user.Deleted = false
	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted = 0`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByName retrieves a user by exact name, excluding soft-deleted users
func (r *UserRepository) GetByName(name string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = ? AND deleted = 0`

	user, err := scanUser(r.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Update renames a user.
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(`UPDATE users SET name = ? WHERE id = ? AND deleted = 0`, user.Name, user.UserID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: user %d", shared.ErrNotFound, user.UserID))
}

// Touch records activity for a user, as a login does.
func (r *UserRepository) Touch(id int) error {
	result, err := r.db.Exec(`UPDATE users SET last_active_at = ? WHERE id = ? AND deleted = 0`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: user %d", shared.ErrNotFound, id))
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(id int) error {
	result, err := r.db.Exec(`UPDATE users SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: user %d", shared.ErrNotFound, id))
}

// List retrieves all users matching the given criteria, excluding soft-deleted users
//
// Supported criteria: "name" (string).
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted = 0`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

var _ Repository[*models.User] = (*UserRepository)(nil)
