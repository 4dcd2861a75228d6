// Bookshelf API [Library] implementation
//
// Endpoints are relative to the API root (default http://localhost:8080/api/v1).
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
	"golang.org/x/oauth2"
)

// BookshelfService talks to the bookshelf API as the signed-in user.
type BookshelfService struct {
	public *APIService // unauthenticated, for login
	api    *APIService

	mu             sync.Mutex
	onUnauthorized func()
}

// NewBookshelfService creates a service over api. Requests other than Login carry tokens from ts when it is non-nil.
func NewBookshelfService(api *APIService, ts oauth2.TokenSource) *BookshelfService {
	authed := api
	if ts != nil {
		authed = api.WithTokenSource(ts)
	}
	return &BookshelfService{public: api, api: authed}
}

// OnUnauthorized registers fn to run whenever the API answers 401.
func (s *BookshelfService) OnUnauthorized(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = fn
}

// check runs the unauthorized hook for 401 responses and passes err through.
func (s *BookshelfService) check(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		s.mu.Lock()
		fn := s.onUnauthorized
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	}
	return err
}

// GetBookDetail retrieves a book and the caller's shelf record for it.
//
// Calls GET /books/{id}.
func (s *BookshelfService) GetBookDetail(ctx context.Context, bookID string) (*models.BookDetail, error) {
	var detail models.BookDetail
	err := s.check(s.api.JSON(ctx, http.MethodGet, "/books/"+url.PathEscape(bookID), nil, &detail))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, bookID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", bookID, err)
	}
	return &detail, nil
}

// GetBookContent retrieves the stored text of a book.
//
// Calls GET /books/{id}/content. A 404 or an empty body is [shared.ErrContentNotFound].
func (s *BookshelfService) GetBookContent(ctx context.Context, bookID string) (*models.BookContent, error) {
	resp, err := s.api.Get(ctx, "/books/"+url.PathEscape(bookID)+"/content")
	if err != nil {
		return nil, fmt.Errorf("failed to get content for book %s: %w", bookID, err)
	}
	if err := s.check(resp.Err()); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrContentNotFound, bookID)
		}
		return nil, fmt.Errorf("failed to get content for book %s: %w", bookID, err)
	}

	content := &models.BookContent{}
	switch data := resp.JSONData.(type) {
	case map[string]any:
		if err := resp.Decode(content); err != nil {
			return nil, err
		}
	case string:
		content.Content = data
	default:
		content.Content = string(resp.Body)
	}

	if strings.TrimSpace(content.Content) == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrContentNotFound, bookID)
	}
	return content, nil
}

// AddToShelf adds a catalog book to the caller's shelf.
//
// Calls POST /shelf with {bookId, status}.
func (s *BookshelfService) AddToShelf(ctx context.Context, bookID string, status models.Status) (*models.UserBook, error) {
	id, err := strconv.ParseInt(bookID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: book id %q", shared.ErrInvalidArgument, bookID)
	}

	body := map[string]any{"bookId": id, "status": status}
	var userBook models.UserBook
	if err := s.check(s.api.JSON(ctx, http.MethodPost, "/shelf", body, &userBook)); err != nil {
		return nil, fmt.Errorf("failed to add book %s to shelf: %w", bookID, err)
	}
	return &userBook, nil
}

// UpdateReadingPosition stores the reading position on a shelf record.
//
// Calls PUT /shelf/{recordID} with {currentPage, totalPages, progress}.
func (s *BookshelfService) UpdateReadingPosition(ctx context.Context, recordID string, update models.ProgressUpdate) error {
	err := s.check(s.api.JSON(ctx, http.MethodPut, "/shelf/"+url.PathEscape(recordID), update, nil))
	if err != nil {
		return fmt.Errorf("failed to update reading position of %s: %w", recordID, err)
	}
	return nil
}

// UploadContent attaches personal text to a shelf record.
//
// Calls POST /shelf/{recordID}/content as multipart/form-data with a single "file" part.
func (s *BookshelfService) UploadContent(ctx context.Context, recordID, filename string, text io.Reader) (*models.UserBook, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, text); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := s.api.Do(ctx, http.MethodPost, "/shelf/"+url.PathEscape(recordID)+"/content", &buf, form.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("failed to upload content: %w", err)
	}
	if err := s.check(resp.Err()); err != nil {
		return nil, fmt.Errorf("failed to upload content: %w", err)
	}

	var userBook models.UserBook
	if resp.IsJSON {
		if err := resp.Decode(&userBook); err != nil {
			return nil, err
		}
	}
	return &userBook, nil
}

// GetShelf lists one page of the caller's shelf.
//
// Calls GET /shelf?page=&size=. A bare JSON array is accepted as a single page.
func (s *BookshelfService) GetShelf(ctx context.Context, page, size int) (*models.ShelfPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}

	resp, err := s.api.Get(ctx, "/shelf?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get shelf: %w", err)
	}
	if err := s.check(resp.Err()); err != nil {
		return nil, fmt.Errorf("failed to get shelf: %w", err)
	}

	var shelf models.ShelfPage
	if _, ok := resp.JSONData.([]any); ok {
		if err := resp.Decode(&shelf.Content); err != nil {
			return nil, err
		}
		shelf.TotalElements = len(shelf.Content)
		shelf.TotalPages = 1
		return &shelf, nil
	}

	if err := resp.Decode(&shelf); err != nil {
		return nil, err
	}
	return &shelf, nil
}

// Login exchanges credentials for a bearer token.
//
// Calls POST /users/login. The token comes back as a raw string, a JSON string or {"token": ...}.
func (s *BookshelfService) Login(ctx context.Context, username, password string) (string, error) {
	data, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := s.public.Post(ctx, "/users/login", data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	var token string
	switch v := resp.JSONData.(type) {
	case string:
		token = v
	case map[string]any:
		token, _ = v["token"].(string)
		if token == "" {
			token, _ = v["accessToken"].(string)
		}
	default:
		token = strings.TrimSpace(string(resp.Body))
	}

	if token == "" {
		return "", fmt.Errorf("%w: empty token in login response", shared.ErrAuthFailed)
	}
	return token, nil
}

// Me retrieves the signed-in user.
//
// Calls GET /users/me.
func (s *BookshelfService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.check(s.api.JSON(ctx, http.MethodGet, "/users/me", nil, &user)); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}
