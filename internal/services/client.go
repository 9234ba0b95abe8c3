package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/shared"
)

// StatusError is returned (wrapped) when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client is the typed HTTP implementation of [PromotionAPI].
type Client struct {
	api    *APIService
	logger *log.Logger
}

// NewClient wraps api. A nil logger falls back to the default charm logger.
func NewClient(api *APIService, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{api: api, logger: logger}
}

// NewClientFromConfig builds the transport, raw service and typed client for config.
func NewClientFromConfig(ctx context.Context, config shared.APIConfig, logger *log.Logger) *Client {
	api := NewAPIService(config.BaseURL, NewHTTPClient(ctx, config), WithRateLimit(config.RateLimit))
	return NewClient(api, logger)
}

// API exposes the raw service for passthrough requests.
func (c *Client) API() *APIService {
	return c.api
}

// call performs one request and decodes a non-empty response body into out.
// A *[]byte out receives the body undecoded.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	var data []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %s: failed to encode request: %w", shared.ErrAPIRequest, op, err)
		}
		data = encoded
	}

	resp, err := c.api.Do(ctx, method, path, data)
	if err != nil {
		c.logger.Error("api request failed", "operation", op, "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, err)
	}

	if !resp.OK() {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
		c.logger.Error("api request rejected", "operation", op, "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, statusErr)
	}

	c.logger.Debug("api request", "operation", op, "method", method, "path", path, "status", resp.StatusCode)

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = resp.Body
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.logger.Error("api response undecodable", "operation", op, "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s: failed to decode response: %w", shared.ErrAPIRequest, op, err)
	}
	return nil
}

// GetUserByName calls GET /User/name/{name}.
func (c *Client) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	path := "/User/name/" + url.PathEscape(name)
	if err := c.call(ctx, "GetUserByName", http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID calls GET /User/{userId}.
func (c *Client) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	var user models.User
	path := fmt.Sprintf("/User/%d", userID)
	if err := c.call(ctx, "GetUserByID", http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetReleasesByUserID calls GET /Release/user/{userId}.
func (c *Client) GetReleasesByUserID(ctx context.Context, userID int) ([]models.Release, error) {
	var releases []models.Release
	path := fmt.Sprintf("/Release/user/%d", userID)
	if err := c.call(ctx, "GetReleasesByUserID", http.MethodGet, path, nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// CreateRelease calls POST /Release.
func (c *Client) CreateRelease(ctx context.Context, draft models.ReleaseDraft) (*models.Release, error) {
	var release models.Release
	if err := c.call(ctx, "CreateRelease", http.MethodPost, "/Release", draft, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// UpdateRelease calls PUT /Release/{releaseId} with the set fields of patch.
func (c *Client) UpdateRelease(ctx context.Context, releaseID int, patch models.ReleasePatch) error {
	path := fmt.Sprintf("/Release/%d", releaseID)
	return c.call(ctx, "UpdateRelease", http.MethodPut, path, patch, nil)
}

// DeleteRelease calls DELETE /Release/{releaseId}.
func (c *Client) DeleteRelease(ctx context.Context, releaseID int) error {
	path := fmt.Sprintf("/Release/%d", releaseID)
	return c.call(ctx, "DeleteRelease", http.MethodDelete, path, nil, nil)
}

// GetPromotionTasks calls GET /PromotionTasks.
func (c *Client) GetPromotionTasks(ctx context.Context) ([]models.PromotionTask, error) {
	var tasks []models.PromotionTask
	if err := c.call(ctx, "GetPromotionTasks", http.MethodGet, "/PromotionTasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreatePromotionTask calls POST /PromotionTasks with a draft.
func (c *Client) CreatePromotionTask(ctx context.Context, draft models.TaskDraft) (*models.PromotionTask, error) {
	var task models.PromotionTask
	if err := c.call(ctx, "CreatePromotionTask", http.MethodPost, "/PromotionTasks", draft, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask calls POST /PromotionTasks with the whole task.
//
// The back reference to the release is dropped from the payload.
func (c *Client) UpdateTask(ctx context.Context, task models.PromotionTask) (*models.PromotionTask, error) {
	task.Release = nil

	var updated models.PromotionTask
	if err := c.call(ctx, "UpdateTask", http.MethodPost, "/PromotionTasks", task, &updated); err != nil {
		return nil, err
	}
	if updated.TaskID == 0 {
		return &task, nil
	}
	return &updated, nil
}

// UpdateTaskStatus calls PUT /PromotionTasks/{taskId}/status.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID int, status models.TaskStatus) (*models.PromotionTask, error) {
	var body []byte
	path := fmt.Sprintf("/PromotionTasks/%d/status", taskID)
	if err := c.call(ctx, "UpdateTaskStatus", http.MethodPut, path, status, &body); err != nil {
		return nil, err
	}
	return updatedTask(body, models.PromotionTask{TaskID: taskID, Status: status}), nil
}

// UpdateTaskPriority calls PUT /PromotionTasks/{taskId}/priority.
func (c *Client) UpdateTaskPriority(ctx context.Context, taskID int, priority models.TaskPriority) (*models.PromotionTask, error) {
	var body []byte
	path := fmt.Sprintf("/PromotionTasks/%d/priority", taskID)
	if err := c.call(ctx, "UpdateTaskPriority", http.MethodPut, path, priority, &body); err != nil {
		return nil, err
	}
	return updatedTask(body, models.PromotionTask{TaskID: taskID, Priority: priority}), nil
}

// updatedTask reads the task echoed by a field update. Backends may answer with any
// JSON value or nothing at all, so anything that is not a task yields sent.
func updatedTask(body []byte, sent models.PromotionTask) *models.PromotionTask {
	task := sent
	if err := json.Unmarshal(body, &task); err != nil || task.TaskID != sent.TaskID {
		return &sent
	}
	return &task
}

var _ PromotionAPI = (*Client)(nil)
