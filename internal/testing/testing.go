// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/bookx/internal/models"
)

// FakeLibrary is a test double for [services.Library].
//
// ContentFailures makes the first n GetBookContent calls return ContentFailErr before succeeding.
type FakeLibrary struct {
	Detail          *models.BookDetail
	DetailErr       error
	Content         string
	ContentErr      error
	ContentFailures int
	ContentFailErr  error
	AddErr          error
	UpdateErr       error
	Release         chan struct{} // when non-nil, updates block until it is closed or receives

	mu           sync.Mutex
	contentCalls int
	added        []string
	updates      []Update
}

// Update is one recorded progress write.
type Update struct {
	RecordID string
	models.ProgressUpdate
}

func (f *FakeLibrary) GetBookDetail(ctx context.Context, bookID string) (*models.BookDetail, error) {
	if f.DetailErr != nil {
		return nil, f.DetailErr
	}
	if f.Detail == nil {
		return &models.BookDetail{}, nil
	}
	detail := *f.Detail
	return &detail, nil
}

func (f *FakeLibrary) GetBookContent(ctx context.Context, bookID string) (*models.BookContent, error) {
	f.mu.Lock()
	f.contentCalls++
	calls := f.contentCalls
	f.mu.Unlock()

	if calls <= f.ContentFailures {
		return nil, f.ContentFailErr
	}
	if f.ContentErr != nil {
		return nil, f.ContentErr
	}
	return &models.BookContent{Content: f.Content}, nil
}

func (f *FakeLibrary) AddToShelf(ctx context.Context, bookID string, status models.Status) (*models.UserBook, error) {
	f.mu.Lock()
	f.added = append(f.added, bookID)
	f.mu.Unlock()

	if f.AddErr != nil {
		return nil, f.AddErr
	}
	return &models.UserBook{ID: 77, Status: status}, nil
}

func (f *FakeLibrary) UpdateReadingPosition(ctx context.Context, recordID string, update models.ProgressUpdate) error {
	if f.Release != nil {
		<-f.Release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, Update{RecordID: recordID, ProgressUpdate: update})
	return f.UpdateErr
}

// ContentCalls returns how many times content was requested.
func (f *FakeLibrary) ContentCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contentCalls
}

// Added returns the book IDs passed to AddToShelf.
func (f *FakeLibrary) Added() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

// Updates returns the recorded progress writes in arrival order.
func (f *FakeLibrary) Updates() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Update(nil), f.updates...)
}

// FakeAssistant is a test double for [services.AssistantService].
type FakeAssistant struct {
	Response string
	Err      error
	Release  chan struct{} // when non-nil, calls block until it is closed or receives

	mu    sync.Mutex
	calls []models.Action
	texts []string
}

func (f *FakeAssistant) Name() string { return "fake" }

func (f *FakeAssistant) PerformAction(ctx context.Context, action models.Action, text string) (string, error) {
	if f.Release != nil {
		select {
		case <-f.Release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, action)
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Calls returns the actions performed so far.
func (f *FakeAssistant) Calls() []models.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Action(nil), f.calls...)
}

// Texts returns the selection text passed with each action.
func (f *FakeAssistant) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// FailingKV is a [models.KV] whose every operation fails.
type FailingKV struct{}

var errStorageUnavailable = errors.New("storage unavailable")

func (FailingKV) Get(string) (string, bool, error) {
	return "", false, errStorageUnavailable
}

func (FailingKV) Set(string, string) error {
	return errStorageUnavailable
}

func (FailingKV) Remove(string) error {
	return errStorageUnavailable
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
