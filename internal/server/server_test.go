package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/models"
	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/desertthunder/promo/internal/tasks"
	"github.com/go-chi/chi/v5"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// newTestServer serves a seeded database. Demo ids: user 1, releases 1-3, tasks 1-4 on release 1
// and 5-6 on release 2.
func newTestServer(t *testing.T, extra ...Middleware) *httptest.Server {
	t.Helper()

	db := setupTestDB(t)
	if _, err := Seed(db); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	logger := log.New(io.Discard)
	router := NewRouter(logger, extra...)
	router.Handler(NewPromotionHandler(db, logger))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func releaseByID(t *testing.T, releases []models.Release, id int) models.Release {
	t.Helper()
	for _, r := range releases {
		if r.ReleaseID == id {
			return r
		}
	}
	t.Fatalf("release %d not found in %+v", id, releases)
	return models.Release{}
}

func testClient(srv *httptest.Server) *services.Client {
	return services.NewClient(services.NewAPIService(srv.URL, srv.Client()), log.New(io.Discard))
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)

	first, err := Seed(db)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if first.Name != DemoUser || first.UserID != 1 {
		t.Errorf("unexpected demo user %+v", first)
	}

	again, err := Seed(db)
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if again.UserID != first.UserID {
		t.Errorf("seeding twice should reuse the user, got id %d", again.UserID)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM releases`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != len(demoReleases) {
		t.Errorf("expected %d releases, got %d", len(demoReleases), count)
	}
}

func TestRouter(t *testing.T) {
	t.Run("unknown route returns JSON 404", func(t *testing.T) {
		srv := newTestServer(t)
		resp := do(t, srv, http.MethodGet, "/nope", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
		var body map[string]string
		decodeBody(t, resp, &body)
		if body["error"] != "not found" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("wrong method returns 405", func(t *testing.T) {
		srv := newTestServer(t)
		resp := do(t, srv, http.MethodPatch, "/PromotionTasks", "")
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("panics are recovered", func(t *testing.T) {
		router := NewRouter(log.New(io.Discard))
		router.Handler(handlerFunc(func(r chi.Router) {
			r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("request logger records status", func(t *testing.T) {
		var buf bytes.Buffer
		router := NewRouter(log.New(&buf))
		router.Handler(handlerFunc(func(r chi.Router) {
			r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		}))

		req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
		req.Header.Set("X-Request-Id", "req-42")
		router.ServeHTTP(httptest.NewRecorder(), req)

		for _, want := range []string{"status=418", "path=/teapot", "request_id=req-42"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("log missing %q: %s", want, buf.String())
			}
		}
	})
}

type handlerFunc func(chi.Router)

func (f handlerFunc) Mount(r chi.Router) { f(r) }

func TestBearerToken(t *testing.T) {
	srv := newTestServer(t, BearerToken("s3cret"))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/User/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	t.Run("empty token disables the check", func(t *testing.T) {
		open := newTestServer(t, BearerToken(""))
		if resp := do(t, open, http.MethodGet, "/User/1", ""); resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("client token transport", func(t *testing.T) {
		client := services.NewClientFromConfig(context.Background(), shared.APIConfig{
			BaseURL:        srv.URL,
			Token:          "s3cret",
			TimeoutSeconds: 5,
		}, log.New(io.Discard))

		if _, err := client.GetUserByID(context.Background(), 1); err != nil {
			t.Errorf("authorized client should succeed: %v", err)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("by name", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/User/name/Test%20McApp", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var user models.User
		decodeBody(t, resp, &user)
		if user.UserID != 1 || user.Name != DemoUser {
			t.Errorf("unexpected user %+v", user)
		}
		if len(user.Releases) != 0 {
			t.Error("name lookup should not nest releases")
		}
	})

	t.Run("by name is exact", func(t *testing.T) {
		if resp := do(t, srv, http.MethodGet, "/User/name/test%20mcapp", ""); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("by id nests releases and tasks", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/User/1", "")
		var user models.User
		decodeBody(t, resp, &user)

		if len(user.Releases) != 3 {
			t.Fatalf("expected 3 releases, got %d", len(user.Releases))
		}
		if user.Releases[0].Title != "Basement Tapes" {
			t.Errorf("releases should be newest first, got %q", user.Releases[0].Title)
		}
		if got := len(releaseByID(t, user.Releases, 1).PromotionTasks); got != 4 {
			t.Errorf("expected 4 tasks on Night Drive, got %d", got)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		if resp := do(t, srv, http.MethodGet, "/User/abc", ""); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		if resp := do(t, srv, http.MethodGet, "/User/99", ""); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestReleaseEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list by user", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/Release/user/1", "")
		var releases []models.Release
		decodeBody(t, resp, &releases)
		if len(releases) != 3 || releaseByID(t, releases, 1).Title != "Night Drive" {
			t.Errorf("unexpected releases %+v", releases)
		}
	})

	t.Run("list for unknown user", func(t *testing.T) {
		if resp := do(t, srv, http.MethodGet, "/Release/user/42", ""); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("create", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/Release", `{"userId":1,"title":"Cold Open","type":2,"releaseDate":"2026-01-09T00:00:00Z"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var release models.Release
		decodeBody(t, resp, &release)
		if release.ReleaseID != 4 || release.Type != models.Album {
			t.Errorf("unexpected release %+v", release)
		}
	})

	t.Run("create rejects invalid drafts", func(t *testing.T) {
		tests := map[string]struct {
			body string
			want int
		}{
			"empty title":  {`{"userId":1,"title":"  ","type":0}`, http.StatusBadRequest},
			"bad type":     {`{"userId":1,"title":"X","type":9}`, http.StatusBadRequest},
			"unknown user": {`{"userId":9,"title":"X","type":0}`, http.StatusNotFound},
			"not json":     {`title=X`, http.StatusBadRequest},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				if resp := do(t, srv, http.MethodPost, "/Release", tt.body); resp.StatusCode != tt.want {
					t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
				}
			})
		}
	})

	t.Run("update patches set fields", func(t *testing.T) {
		resp := do(t, srv, http.MethodPut, "/Release/2", `{"title":"Summer Static (Remix)"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var release models.Release
		decodeBody(t, resp, &release)
		if release.Title != "Summer Static (Remix)" || release.Type != models.Single {
			t.Errorf("unexpected release %+v", release)
		}
	})

	t.Run("update rejects empty patch and blank title", func(t *testing.T) {
		if resp := do(t, srv, http.MethodPut, "/Release/2", `{}`); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("empty patch: expected 400, got %d", resp.StatusCode)
		}
		if resp := do(t, srv, http.MethodPut, "/Release/2", `{"title":""}`); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("blank title: expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("delete hides the release", func(t *testing.T) {
		if resp := do(t, srv, http.MethodDelete, "/Release/3", ""); resp.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", resp.StatusCode)
		}
		if resp := do(t, srv, http.MethodDelete, "/Release/3", ""); resp.StatusCode != http.StatusNotFound {
			t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
		}

		var user models.User
		decodeBody(t, do(t, srv, http.MethodGet, "/User/1", ""), &user)
		for _, r := range user.Releases {
			if r.ReleaseID == 3 {
				t.Error("deleted release should not be listed")
			}
		}
	})
}

func TestTaskEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list all and by release", func(t *testing.T) {
		var all []models.PromotionTask
		decodeBody(t, do(t, srv, http.MethodGet, "/PromotionTasks", ""), &all)
		if len(all) != 6 {
			t.Errorf("expected 6 tasks, got %d", len(all))
		}

		var some []models.PromotionTask
		decodeBody(t, do(t, srv, http.MethodGet, "/PromotionTasks?releaseId=2", ""), &some)
		if len(some) != 2 {
			t.Errorf("expected 2 tasks for release 2, got %d", len(some))
		}

		if resp := do(t, srv, http.MethodGet, "/PromotionTasks?releaseId=x", ""); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("create forces to do", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/PromotionTasks", `{"releaseId":2,"status":2,"priority":1,"description":"Film video"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var task models.PromotionTask
		decodeBody(t, resp, &task)
		if task.TaskID != 7 || task.Status != models.ToDo || task.Priority != models.High {
			t.Errorf("unexpected task %+v", task)
		}
	})

	t.Run("create validation", func(t *testing.T) {
		if resp := do(t, srv, http.MethodPost, "/PromotionTasks", `{"releaseId":2,"priority":1,"description":" "}`); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("empty description: expected 400, got %d", resp.StatusCode)
		}
		if resp := do(t, srv, http.MethodPost, "/PromotionTasks", `{"releaseId":77,"priority":1,"description":"Orphan"}`); resp.StatusCode != http.StatusNotFound {
			t.Errorf("unknown release: expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("replace with soft delete", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/PromotionTasks", `{"taskId":3,"releaseId":1,"status":0,"priority":2,"description":"Book release show","deleted":true}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var task models.PromotionTask
		decodeBody(t, resp, &task)
		if !task.Deleted {
			t.Error("task should be soft-deleted")
		}
	})

	t.Run("replace unknown task", func(t *testing.T) {
		resp := do(t, srv, http.MethodPost, "/PromotionTasks", `{"taskId":500,"releaseId":1,"status":0,"priority":2,"description":"Ghost"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("status and priority take bare integers", func(t *testing.T) {
		var task models.PromotionTask
		decodeBody(t, do(t, srv, http.MethodPut, "/PromotionTasks/2/status", `2`), &task)
		if task.Status != models.Done {
			t.Errorf("status = %v, want Done", task.Status)
		}

		decodeBody(t, do(t, srv, http.MethodPut, "/PromotionTasks/2/priority", `0`), &task)
		if task.Priority != models.Urgent || task.Status != models.Done {
			t.Errorf("unexpected task %+v", task)
		}
	})

	t.Run("status and priority reject bad values", func(t *testing.T) {
		tests := []struct {
			path, body string
			want       int
		}{
			{"/PromotionTasks/2/status", `7`, http.StatusBadRequest},
			{"/PromotionTasks/2/priority", `-1`, http.StatusBadRequest},
			{"/PromotionTasks/2/status", `"Done"`, http.StatusBadRequest},
			{"/PromotionTasks/404/status", `1`, http.StatusNotFound},
			{"/PromotionTasks/0/priority", `1`, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.path+" "+tt.body, func(t *testing.T) {
				if resp := do(t, srv, http.MethodPut, tt.path, tt.body); resp.StatusCode != tt.want {
					t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
				}
			})
		}
	})
}

// TestClientRoundTrip drives the HTTP client and a task board against the real backend.
func TestClientRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(srv)
	ctx := context.Background()

	user, err := client.GetUserByName(ctx, DemoUser)
	if err != nil {
		t.Fatalf("GetUserByName failed: %v", err)
	}

	t.Run("unknown user is an api error", func(t *testing.T) {
		_, err := client.GetUserByName(ctx, "nobody")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		var statusErr *services.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 status error, got %v", err)
		}
	})

	full, err := client.GetUserByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	releases := full.VisibleReleases()
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases, got %d", len(releases))
	}

	board := tasks.NewBoard(releaseByID(t, releases, 1), tasks.HandlersFor(client), tasks.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))

	t.Run("status advance persists", func(t *testing.T) {
		m, err := board.AdvanceStatus(2)
		if err != nil {
			t.Fatalf("AdvanceStatus failed: %v", err)
		}
		if err := board.Run(ctx, m); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		tasks, err := client.GetPromotionTasks(ctx)
		if err != nil {
			t.Fatalf("GetPromotionTasks failed: %v", err)
		}
		for _, task := range tasks {
			if task.TaskID == 2 && task.Status != models.InProgress {
				t.Errorf("server status = %v, want In Progress", task.Status)
			}
		}
	})

	t.Run("create lands sorted", func(t *testing.T) {
		board.OpenDraft()
		board.SetDraftDescription("Record live session")
		board.SetDraftPriority(models.High)

		m, err := board.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := board.Run(ctx, m); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		got := board.Tasks()
		if len(got) != 5 {
			t.Fatalf("expected 5 tasks, got %d", len(got))
		}
		if got[2].Description != "Record live session" || got[2].TaskID != 7 {
			t.Errorf("new task not at its priority position: %+v", got)
		}
	})

	t.Run("delete survives reload", func(t *testing.T) {
		if err := board.RequestDelete(4); err != nil {
			t.Fatalf("RequestDelete failed: %v", err)
		}
		m, err := board.ConfirmDelete()
		if err != nil {
			t.Fatalf("ConfirmDelete failed: %v", err)
		}
		if err := board.Run(ctx, m); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		reloaded, err := client.GetUserByID(ctx, user.UserID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		visible := releaseByID(t, reloaded.VisibleReleases(), 1).Tasks()
		if len(visible) != 4 {
			t.Errorf("expected 4 visible tasks after delete, got %d", len(visible))
		}
		for _, task := range visible {
			if task.TaskID == 4 {
				t.Error("deleted task still visible")
			}
		}
	})

	t.Run("release lifecycle", func(t *testing.T) {
		created, err := client.CreateRelease(ctx, models.ReleaseDraft{
			UserID: user.UserID, Title: "Afterglow", Type: models.Single,
			ReleaseDate: models.MustParseDate("2026-02-14"),
		})
		if err != nil {
			t.Fatalf("CreateRelease failed: %v", err)
		}

		title := "Afterglow (Deluxe)"
		if err := client.UpdateRelease(ctx, created.ReleaseID, models.ReleasePatch{Title: &title}); err != nil {
			t.Fatalf("UpdateRelease failed: %v", err)
		}

		list, err := client.GetReleasesByUserID(ctx, user.UserID)
		if err != nil {
			t.Fatalf("GetReleasesByUserID failed: %v", err)
		}
		if got := releaseByID(t, list, created.ReleaseID); got.Title != title {
			t.Errorf("rename not persisted: %+v", got)
		}

		if err := client.DeleteRelease(ctx, created.ReleaseID); err != nil {
			t.Fatalf("DeleteRelease failed: %v", err)
		}
		if err := client.DeleteRelease(ctx, created.ReleaseID); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("deleting twice should fail, got %v", err)
		}
	})
}

func TestServerRun(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler(), log.New(io.Discard))
	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", srv.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
