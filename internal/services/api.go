// Raw HTTP access to the promotion tracker API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/promo/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "http://localhost:5110"
	RequestIDHeader = "X-Request-ID"
)

// APIService provides methods for making raw HTTP requests to the promotion API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// APIOption customizes an [APIService].
type APIOption func(*APIService)

// WithRateLimit throttles outgoing requests to rps requests per second. Zero disables throttling.
func WithRateLimit(rps float64) APIOption {
	return func(a *APIService) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewAPIService creates a new API service instance for the promotion API.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewHTTPClient builds the [http.Client] described by config.
//
// When a token is configured every request carries it as a bearer token.
func NewHTTPClient(ctx context.Context, config shared.APIConfig) *http.Client {
	client := &http.Client{}
	if config.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
	}
	client.Timeout = config.Timeout()
	return client
}

// BaseURL returns the API root requests are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs a request with an optional JSON body and returns the raw response.
func (a *APIService) Do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, shared.GenerateID())
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &jsonData); err == nil {
			apiResp.IsJSON = true
			apiResp.JSONData = jsonData
		}
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPut, path, data)
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil)
}
