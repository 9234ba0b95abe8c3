package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// TaskRepository implements [Repository] for [models.PromotionTask] persistence.
//
// Soft-deleted tasks stay readable with their flag set.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new [TaskRepository] with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, release_id, status, priority, description, due_date, deleted`

func scanTask(row rowScanner) (*models.PromotionTask, error) {
	var (
		task    models.PromotionTask
		dueDate sql.NullTime
	)
	err := row.Scan(&task.TaskID, &task.ReleaseID, &task.Status, &task.Priority, &task.Description, &dueDate, &task.Deleted)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := models.NewDate(dueDate.Time)
		task.DueDate = &d
	}
	return &task, nil
}

func nullDueDate(d *models.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return nullDate(*d)
}

// Create inserts a new task with the next sequence ID.
func (r *TaskRepository) Create(task *models.PromotionTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id, err := NextSequence(r.db, "promotion_tasks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `INSERT INTO promotion_tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id, task.ReleaseID, task.Status, task.Priority,
		task.Description, nullDueDate(task.DueDate), task.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.TaskID = id
	return nil
}

// CreateFromDraft inserts the task described by draft.
func (r *TaskRepository) CreateFromDraft(draft models.TaskDraft) (*models.PromotionTask, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	task := &models.PromotionTask{
		ReleaseID:   draft.ReleaseID,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Description: draft.Description,
	}
	if err := r.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get retrieves a task by ID, soft-deleted or not
func (r *TaskRepository) Get(id int) (*models.PromotionTask, error) {
	query := `SELECT ` + taskColumns + ` FROM promotion_tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: task %d", shared.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

// Update replaces every column of the task, including its deleted flag.
func (r *TaskRepository) Update(task *models.PromotionTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE promotion_tasks
		SET release_id = ?, status = ?, priority = ?, description = ?, due_date = ?, deleted = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		task.ReleaseID, task.Status, task.Priority, task.Description,
		nullDueDate(task.DueDate), task.Deleted, task.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: task %d", shared.ErrTaskNotFound, task.TaskID))
}

// SetStatus changes only the status column and returns the updated task.
func (r *TaskRepository) SetStatus(id int, status models.TaskStatus) (*models.PromotionTask, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrInvalidInput, status)
	}
	return r.setColumn(id, "status", status)
}

// SetPriority changes only the priority column and returns the updated task.
func (r *TaskRepository) SetPriority(id int, priority models.TaskPriority) (*models.PromotionTask, error) {
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: priority %d", shared.ErrInvalidInput, priority)
	}
	return r.setColumn(id, "priority", priority)
}

func (r *TaskRepository) setColumn(id int, column string, value any) (*models.PromotionTask, error) {
	result, err := r.db.Exec(fmt.Sprintf("UPDATE promotion_tasks SET %s = ? WHERE id = ?", column), value, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", column, err)
	}
	if err := affectedOne(result, fmt.Errorf("%w: task %d", shared.ErrTaskNotFound, id)); err != nil {
		return nil, err
	}
	return r.Get(id)
}

// Delete soft-deletes a task by ID
func (r *TaskRepository) Delete(id int) error {
	result, err := r.db.Exec(`UPDATE promotion_tasks SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return affectedOne(result, fmt.Errorf("%w: task %d", shared.ErrTaskNotFound, id))
}

// List retrieves all tasks matching the given criteria.
//
// Supported criteria: "release_id" (int) and "visible" (bool, drops soft-deleted tasks).
func (r *TaskRepository) List(criteria map[string]any) ([]*models.PromotionTask, error) {
	query := `SELECT ` + taskColumns + ` FROM promotion_tasks WHERE 1 = 1`
	args := []any{}

	if releaseID, ok := criteria["release_id"].(int); ok {
		query += " AND release_id = ?"
		args = append(args, releaseID)
	}
	if visible, ok := criteria["visible"].(bool); ok && visible {
		query += " AND deleted = 0"
	}

	query += " ORDER BY priority ASC, id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.PromotionTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// ListByRelease returns every task of a release, soft-deleted ones included.
func (r *TaskRepository) ListByRelease(releaseID int) ([]*models.PromotionTask, error) {
	return r.List(map[string]any{"release_id": releaseID})
}

var _ Repository[*models.PromotionTask] = (*TaskRepository)(nil)
