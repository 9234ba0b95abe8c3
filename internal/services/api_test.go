package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/promo/internal/shared"
	tu "github.com/desertthunder/promo/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://localhost:5110" {
				t.Errorf("expected default baseURL 'http://localhost:5110', got %s", srv.baseURL)
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Decodes JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/User/1" {
					t.Errorf("expected path '/User/1', got %s", r.URL.Path)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected JSON accept header, got %q", r.Header.Get("Accept"))
				}

				w.Header().Set("X-Backend", "promo")
				json.NewEncoder(w).Encode(map[string]any{"userId": 1, "name": "Test McApp"})
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/User/1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Fatalf("expected OK JSON response, got %d (json=%v)", resp.StatusCode, resp.IsJSON)
			}

			data, ok := resp.JSONData.(map[string]any)
			if !ok || data["name"] != "Test McApp" {
				t.Errorf("unexpected JSONData %#v", resp.JSONData)
			}
			if resp.Headers.Get("X-Backend") != "promo" {
				t.Errorf("expected response headers to be kept, got %v", resp.Headers)
			}
		})

		t.Run("Keeps Plain Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("healthy"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected plain body to not be JSON")
			}
			if string(resp.Body) != "healthy" {
				t.Errorf("expected body 'healthy', got %s", string(resp.Body))
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends Release Draft", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				var draft map[string]any
				if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				if draft["title"] != "Night Drive" {
					t.Errorf("expected title 'Night Drive', got %v", draft["title"])
				}

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]any{"releaseId": 4, "title": "Night Drive"})
			}))
			defer server.Close()

			body, _ := json.Marshal(map[string]any{"title": "Night Drive", "userId": 1})
			resp, err := NewAPIService(server.URL, nil).Post(context.Background(), "/Release", body)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})

		t.Run("Empty Body Has No Content", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %d bytes", len(body))
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, nil).Post(context.Background(), "/PromotionTasks", []byte{}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("Failures", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		tests := []struct {
			name    string
			client  *http.Client
			ctx     context.Context
			path    string
			wantErr string
		}{
			{
				name:    "bad path",
				path:    "/Release\x00bad",
				wantErr: "failed to create request",
			},
			{
				name:    "transport error",
				client:  &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
				path:    "/Release/1",
				wantErr: "request failed",
			},
			{
				name: "unreadable body",
				client: &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil)},
				path:    "/Release/1",
				wantErr: "failed to read response",
			},
			{
				name:    "canceled context",
				client:  &http.Client{Transport: tu.NewMockRoundTripper(nil, context.Canceled)},
				ctx:     canceled,
				path:    "/Release/1",
				wantErr: "request failed",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctx := tt.ctx
				if ctx == nil {
					ctx = context.Background()
				}
				srv := NewAPIService("http://example.com", tt.client)

				for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
					_, err := srv.Do(ctx, method, tt.path, []byte(`{}`))
					if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
						t.Errorf("%s: expected %q error, got %v", method, tt.wantErr, err)
					}
				}
			})
		}
	})

	t.Run("Put", func(t *testing.T) {
		t.Run("Sends JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("expected PUT method, got %s", r.Method)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != "2" {
					t.Errorf("expected body '2', got %s", string(body))
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Put(context.Background(), "/PromotionTasks/1/status", []byte("2"))

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected 2xx, got %d", resp.StatusCode)
			}
			if resp.IsJSON {
				t.Error("expected empty body to not be JSON")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Sends No Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "" {
					t.Errorf("expected no Content-Type, got %s", r.Header.Get("Content-Type"))
				}
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Delete(context.Background(), "/Release/9")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected 404 to not be OK")
			}
		})
	})

	t.Run("Request ID", func(t *testing.T) {
		var mu sync.Mutex
		seen := map[string]bool{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				t.Error("expected request id header")
			}
			mu.Lock()
			seen[id] = true
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		for range 3 {
			if _, err := srv.Get(context.Background(), "/test"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		mu.Lock()
		defer mu.Unlock()
		if len(seen) != 3 {
			t.Errorf("expected 3 distinct request ids, got %d", len(seen))
		}
	})

	t.Run("Rate Limit", func(t *testing.T) {
		t.Run("Zero Disables Limiter", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil, WithRateLimit(0))
			if srv.limiter != nil {
				t.Error("expected no limiter")
			}
		})

		t.Run("Canceled Context Fails Wait", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, WithRateLimit(0.001))
			if _, err := srv.Get(context.Background(), "/first"); err != nil {
				t.Fatalf("first request should use the burst, got %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := srv.Get(ctx, "/second")
			if err == nil || !strings.Contains(err.Error(), "rate limiter") {
				t.Errorf("expected rate limiter error, got %v", err)
			}
		})
	})

	t.Run("Bearer Token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
				t.Errorf("expected bearer token, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewHTTPClient(context.Background(), shared.APIConfig{Token: "s3cret", TimeoutSeconds: 5})
		if client.Timeout != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", client.Timeout)
		}

		srv := NewAPIService(server.URL, client)
		if _, err := srv.Get(context.Background(), "/test"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Trailing Slash Is Trimmed", func(t *testing.T) {
		srv := NewAPIService("http://example.com/", nil)
		if srv.BaseURL() != "http://example.com" {
			t.Errorf("expected trimmed base URL, got %s", srv.BaseURL())
		}
	})

	t.Run("APIResponse", func(t *testing.T) {
		t.Run("JSON Detection", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"valid": "json"}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected valid JSON to be detected")
			}

			jsonMap, ok := resp.JSONData.(map[string]any)
			if !ok {
				t.Error("expected JSONData to be map[string]interface{}")
			}
			if jsonMap["valid"] != "json" {
				t.Errorf("expected JSONData['valid'] to be 'json', got %v", jsonMap["valid"])
			}
		})

		t.Run("Invalid JSON Detection", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected invalid JSON to not be detected as JSON")
			}
			if resp.JSONData != nil {
				t.Error("expected JSONData to be nil for invalid JSON")
			}
		})
	})
}
