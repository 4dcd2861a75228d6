// API service for making HTTP requests to the bookshelf backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/bookx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://localhost:8080/api/v1"
	DefaultTimeout = 10 * time.Second
)

// APIService provides methods for making raw HTTP requests to the bookshelf API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service instance.
//
// An empty baseURL means [DefaultBaseURL]; a nil client gets a fresh client with [DefaultTimeout].
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the API root requests are made against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// WithRateLimit throttles requests to rps per second. Non-positive rps disables limiting.
func (a *APIService) WithRateLimit(rps float64) *APIService {
	if rps <= 0 {
		a.limiter = nil
		return a
	}
	a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return a
}

// WithTokenSource returns a copy of a whose requests carry a bearer token from ts.
//
// A token source error fails the request before it is sent.
func (a *APIService) WithTokenSource(ts oauth2.TokenSource) *APIService {
	base := a.httpClient.Transport
	client := *a.httpClient
	client.Transport = &oauth2.Transport{Source: ts, Base: base}

	return &APIService{
		baseURL:    a.baseURL,
		httpClient: &client,
		limiter:    a.limiter,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Err returns nil for a 2xx response and a [*StatusError] otherwise.
func (r *APIResponse) Err() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	return newStatusError(r.StatusCode, r.Body)
}

// Decode unmarshals the JSON body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx API response.
//
// It unwraps to the matching sentinel in [shared] so callers can use errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

func newStatusError(code int, body []byte) *StatusError {
	kind := shared.ErrAPIRequest
	switch {
	case code == http.StatusUnauthorized:
		kind = shared.ErrNotAuthenticated
	case code == http.StatusNotFound:
		kind = shared.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		kind = shared.ErrServiceUnavailable
	}
	return &StatusError{StatusCode: code, Message: errorMessage(body), kind: kind}
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// errorMessage pulls "message" or "error" from a JSON error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// IsTransient reports whether err is worth retrying: network failures and 429/5xx responses.
//
// Cancellation, auth and client errors are not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, shared.ErrServiceUnavailable) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Do sends a request with an optional body and returns the raw response.
//
// Every request carries a fresh X-Request-ID. Non-2xx statuses are not errors here; see [APIResponse.Err].
func (a *APIService) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPut, path, bytes.NewReader(data), "application/json")
}

// Patch performs a PATCH request with the given JSON data and returns the raw response.
func (a *APIService) Patch(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPatch, path, bytes.NewReader(data), "application/json")
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil, "")
}

// JSON sends in as a JSON body (if non-nil), checks the status and decodes the response into out (if non-nil).
func (a *APIService) JSON(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := a.Do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	return resp.Decode(out)
}
