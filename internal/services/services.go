package services

import (
	"context"

	"github.com/desertthunder/promo/internal/models"
)

// PromotionAPI is the set of backend capabilities the client consumes.
//
// [Client] is the HTTP implementation; views and commands depend on this interface.
type PromotionAPI interface {
	// GetUserByName resolves a user by exact name. This is the login lookup.
	GetUserByName(ctx context.Context, name string) (*models.User, error)

	// GetUserByID returns a user with nested releases and tasks.
	GetUserByID(ctx context.Context, userID int) (*models.User, error)

	GetReleasesByUserID(ctx context.Context, userID int) ([]models.Release, error)
	CreateRelease(ctx context.Context, draft models.ReleaseDraft) (*models.Release, error)
	UpdateRelease(ctx context.Context, releaseID int, patch models.ReleasePatch) error
	DeleteRelease(ctx context.Context, releaseID int) error

	GetPromotionTasks(ctx context.Context) ([]models.PromotionTask, error)
	CreatePromotionTask(ctx context.Context, draft models.TaskDraft) (*models.PromotionTask, error)

	// UpdateTask replaces a whole task. It is used for description edits and soft deletes.
	UpdateTask(ctx context.Context, task models.PromotionTask) (*models.PromotionTask, error)

	UpdateTaskStatus(ctx context.Context, taskID int, status models.TaskStatus) (*models.PromotionTask, error)
	UpdateTaskPriority(ctx context.Context, taskID int, priority models.TaskPriority) (*models.PromotionTask, error)
}
