package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/repositories"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// PromotionHandler serves the promotion tracker REST API from sqlite.
type PromotionHandler struct {
	users    *repositories.UserRepository
	releases *repositories.ReleaseRepository
	tasks    *repositories.TaskRepository
	logger   *log.Logger
}

// NewPromotionHandler creates the API handler over db.
func NewPromotionHandler(db *sql.DB, logger *log.Logger) *PromotionHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &PromotionHandler{
		users:    repositories.NewUserRepository(db),
		releases: repositories.NewReleaseRepository(db),
		tasks:    repositories.NewTaskRepository(db),
		logger:   logger,
	}
}

// Mount registers the API routes.
func (h *PromotionHandler) Mount(r chi.Router) {
	r.Get("/User/name/{name}", h.getUserByName)
	r.Get("/User/{userId}", h.getUserByID)

	r.Get("/Release/user/{userId}", h.getReleasesByUser)
	r.Post("/Release", h.createRelease)
	r.Put("/Release/{releaseId}", h.updateRelease)
	r.Delete("/Release/{releaseId}", h.deleteRelease)

	r.Get("/PromotionTasks", h.listTasks)
	r.Post("/PromotionTasks", h.saveTask)
	r.Put("/PromotionTasks/{taskId}/status", h.updateStatus)
	r.Put("/PromotionTasks/{taskId}/priority", h.updatePriority)
}

func (h *PromotionHandler) getUserByName(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: bad user name", shared.ErrInvalidInput))
		return
	}

	user, err := h.users.GetByName(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Touch(user.UserID); err != nil {
		h.logger.Warn("failed to record user activity", "user", user.UserID, "error", err)
	}
	writeJSON(w, http.StatusOK, user)
}

// getUserByID returns the user with releases and their tasks nested.
func (h *PromotionHandler) getUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.users.Get(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	releases, err := h.releaseTree(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user.Releases = releases
	writeJSON(w, http.StatusOK, user)
}

func (h *PromotionHandler) getReleasesByUser(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.users.Get(id); err != nil {
		h.fail(w, r, err)
		return
	}

	releases, err := h.releaseTree(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, releases)
}

func (h *PromotionHandler) createRelease(w http.ResponseWriter, r *http.Request) {
	var draft models.ReleaseDraft
	if err := decode(r, &draft); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := draft.Validate(); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}
	if _, err := h.users.Get(draft.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	release := &models.Release{
		UserID:      draft.UserID,
		Title:       draft.Title,
		Type:        draft.Type,
		ReleaseDate: draft.ReleaseDate,
	}
	if err := h.releases.Create(release); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, release)
}

func (h *PromotionHandler) updateRelease(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "releaseId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var patch models.ReleasePatch
	if err := decode(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	if patch.Empty() {
		h.fail(w, r, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput))
		return
	}

	candidate := models.Release{Title: "x"}
	patch.ApplyTo(&candidate)
	if err := candidate.Validate(); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	release, err := h.releases.Patch(id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, release)
}

func (h *PromotionHandler) deleteRelease(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "releaseId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.releases.Delete(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PromotionHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if raw := r.URL.Query().Get("releaseId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: releaseId must be an integer", shared.ErrInvalidInput))
			return
		}
		criteria["release_id"] = id
	}

	tasks, err := h.tasks.List(criteria)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flattenTasks(tasks))
}

// saveTask creates the task when taskId is zero and replaces it otherwise.
func (h *PromotionHandler) saveTask(w http.ResponseWriter, r *http.Request) {
	var task models.PromotionTask
	if err := decode(r, &task); err != nil {
		h.fail(w, r, err)
		return
	}
	task.Release = nil

	if task.TaskID == 0 {
		draft := models.TaskDraft{
			ReleaseID:   task.ReleaseID,
			Status:      models.ToDo,
			Priority:    task.Priority,
			Description: task.Description,
		}
		if err := draft.Validate(); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
			return
		}
		if _, err := h.releases.Get(draft.ReleaseID); err != nil {
			h.fail(w, r, err)
			return
		}

		created, err := h.tasks.CreateFromDraft(draft)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
		return
	}

	if err := task.Validate(); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}
	if err := h.tasks.Update(&task); err != nil {
		h.fail(w, r, err)
		return
	}

	saved, err := h.tasks.Get(task.TaskID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *PromotionHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "taskId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var status models.TaskStatus
	if err := decode(r, &status); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.tasks.SetStatus(id, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *PromotionHandler) updatePriority(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "taskId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var priority models.TaskPriority
	if err := decode(r, &priority); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.tasks.SetPriority(id, priority)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// releaseTree loads a user's visible releases with every task attached, soft-deleted ones included.
func (h *PromotionHandler) releaseTree(userID int) ([]models.Release, error) {
	releases, err := h.releases.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Release, 0, len(releases))
	for _, release := range releases {
		tasks, err := h.tasks.ListByRelease(release.ReleaseID)
		if err != nil {
			return nil, err
		}
		release.PromotionTasks = flattenTasks(tasks)
		out = append(out, *release)
	}
	return out, nil
}

// fail maps err onto a status code and writes it as a JSON error body.
func (h *PromotionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func flattenTasks(tasks []*models.PromotionTask) []models.PromotionTask {
	out := make([]models.PromotionTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}

func intParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", shared.ErrInvalidInput, name)
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var _ Handler = (*PromotionHandler)(nil)
