// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/promo/internal/models"
)

// ErrMockUnset is returned by [MockAPI] methods whose func field is nil.
var ErrMockUnset = errors.New("mock: no behavior configured")

// MockAPI is a test double for [services.PromotionAPI].
//
// Each method delegates to the matching func field and records the call.
type MockAPI struct {
	GetUserByNameFunc       func(ctx context.Context, name string) (*models.User, error)
	GetUserByIDFunc         func(ctx context.Context, userID int) (*models.User, error)
	GetReleasesByUserIDFunc func(ctx context.Context, userID int) ([]models.Release, error)
	CreateReleaseFunc       func(ctx context.Context, draft models.ReleaseDraft) (*models.Release, error)
	UpdateReleaseFunc       func(ctx context.Context, releaseID int, patch models.ReleasePatch) error
	DeleteReleaseFunc       func(ctx context.Context, releaseID int) error
	GetPromotionTasksFunc   func(ctx context.Context) ([]models.PromotionTask, error)
	CreateTaskFunc          func(ctx context.Context, draft models.TaskDraft) (*models.PromotionTask, error)
	UpdateTaskFunc          func(ctx context.Context, task models.PromotionTask) (*models.PromotionTask, error)
	UpdateStatusFunc        func(ctx context.Context, taskID int, status models.TaskStatus) (*models.PromotionTask, error)
	UpdatePriorityFunc      func(ctx context.Context, taskID int, priority models.TaskPriority) (*models.PromotionTask, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockAPI) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls in order, e.g. "GetUserByName(alice)".
func (m *MockAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockAPI) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	m.record("GetUserByName(%s)", name)
	if m.GetUserByNameFunc == nil {
		return nil, ErrMockUnset
	}
	return m.GetUserByNameFunc(ctx, name)
}

func (m *MockAPI) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	m.record("GetUserByID(%d)", userID)
	if m.GetUserByIDFunc == nil {
		return nil, ErrMockUnset
	}
	return m.GetUserByIDFunc(ctx, userID)
}

func (m *MockAPI) GetReleasesByUserID(ctx context.Context, userID int) ([]models.Release, error) {
	m.record("GetReleasesByUserID(%d)", userID)
	if m.GetReleasesByUserIDFunc == nil {
		return nil, ErrMockUnset
	}
	return m.GetReleasesByUserIDFunc(ctx, userID)
}

func (m *MockAPI) CreateRelease(ctx context.Context, draft models.ReleaseDraft) (*models.Release, error) {
	m.record("CreateRelease(%s)", draft.Title)
	if m.CreateReleaseFunc == nil {
		return nil, ErrMockUnset
	}
	return m.CreateReleaseFunc(ctx, draft)
}

func (m *MockAPI) UpdateRelease(ctx context.Context, releaseID int, patch models.ReleasePatch) error {
	m.record("UpdateRelease(%d)", releaseID)
	if m.UpdateReleaseFunc == nil {
		return ErrMockUnset
	}
	return m.UpdateReleaseFunc(ctx, releaseID, patch)
}

func (m *MockAPI) DeleteRelease(ctx context.Context, releaseID int) error {
	m.record("DeleteRelease(%d)", releaseID)
	if m.DeleteReleaseFunc == nil {
		return ErrMockUnset
	}
	return m.DeleteReleaseFunc(ctx, releaseID)
}

func (m *MockAPI) GetPromotionTasks(ctx context.Context) ([]models.PromotionTask, error) {
	m.record("GetPromotionTasks()")
	if m.GetPromotionTasksFunc == nil {
		return nil, ErrMockUnset
	}
	return m.GetPromotionTasksFunc(ctx)
}

func (m *MockAPI) CreatePromotionTask(ctx context.Context, draft models.TaskDraft) (*models.PromotionTask, error) {
	m.record("CreatePromotionTask(%d)", draft.ReleaseID)
	if m.CreateTaskFunc == nil {
		return nil, ErrMockUnset
	}
	return m.CreateTaskFunc(ctx, draft)
}

func (m *MockAPI) UpdateTask(ctx context.Context, task models.PromotionTask) (*models.PromotionTask, error) {
	m.record("UpdateTask(%d)", task.TaskID)
	if m.UpdateTaskFunc == nil {
		return nil, ErrMockUnset
	}
	return m.UpdateTaskFunc(ctx, task)
}

func (m *MockAPI) UpdateTaskStatus(ctx context.Context, taskID int, status models.TaskStatus) (*models.PromotionTask, error) {
	m.record("UpdateTaskStatus(%d,%d)", taskID, status)
	if m.UpdateStatusFunc == nil {
		return nil, ErrMockUnset
	}
	return m.UpdateStatusFunc(ctx, taskID, status)
}

func (m *MockAPI) UpdateTaskPriority(ctx context.Context, taskID int, priority models.TaskPriority) (*models.PromotionTask, error) {
	m.record("UpdateTaskPriority(%d,%d)", taskID, priority)
	if m.UpdatePriorityFunc == nil {
		return nil, ErrMockUnset
	}
	return m.UpdatePriorityFunc(ctx, taskID, priority)
}

// SampleUser returns a user with one release holding two unfinished tasks.
func SampleUser() *models.User {
	return &models.User{
		UserID: 1,
		Name:   "Test McApp",
		Releases: []models.Release{
			{
				ReleaseID: 10,
				UserID:    1,
				Title:     "Night Drive",
				Type:      models.EP,
				PromotionTasks: []models.PromotionTask{
					{TaskID: 100, ReleaseID: 10, Priority: models.Low, Description: "Post teaser clip"},
					{TaskID: 101, ReleaseID: 10, Priority: models.Urgent, Description: "Pitch to playlists"},
					{TaskID: 102, ReleaseID: 10, Priority: models.High, Description: "Old idea", Deleted: true},
				},
			},
		},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
