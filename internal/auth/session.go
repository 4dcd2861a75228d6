// Package auth holds the signed-in session: the bearer token, the current user and their lifecycle.
//
// A [Session] is created once per process, initialized from local device storage, and passed to
// whatever needs credentials. It is the [oauth2.TokenSource] behind authenticated API requests.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Storage keys shared with the bookshelf web client.
const (
	TokenKey = "digital-bookshelf-token"
	UserKey  = "digital-bookshelf-user"
)

// Authenticator exchanges credentials for a token and resolves the token's user.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*models.User, error)
}

// Session is the explicit auth context for one device profile.
type Session struct {
	kv     models.KV
	logger *log.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewSession creates an empty session backed by kv. Call [Session.Init] to restore a saved login.
func NewSession(kv models.KV, logger *log.Logger) *Session {
	return &Session{kv: kv, logger: logger, now: time.Now}
}

// Init restores the persisted token and user.
//
// A stored token without a stored user gets a user derived from the token's claims.
func (s *Session) Init() error {
	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}

	var user *models.User
	raw, ok, err := s.kv.Get(UserKey)
	if err != nil {
		return fmt.Errorf("failed to read user: %w", err)
	}
	if ok {
		user = &models.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			s.logger.Warn("discarding unreadable stored user", "error", err)
			user = nil
		}
	}
	if user == nil {
		user = userFromToken(token)
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", usernameOf(user))
	return nil
}

// Login signs in with client and persists the token and user.
//
// The token is stored before the user lookup so that lookup is authenticated with it.
// A failed lookup leaves the session signed out.
func (s *Session) Login(ctx context.Context, client Authenticator, username, password string) (*models.User, error) {
	token, err := client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.kv.Set(TokenKey, token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := client.Me(ctx)
	if err != nil {
		s.Logout()
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.kv.Set(UserKey, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.logger.Info("signed in", "user", user.Username)
	return user, nil
}

// Logout clears the token and user from memory and storage.
func (s *Session) Logout() error {
	s.mu.Lock()
	wasSignedIn := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if wasSignedIn {
		s.logger.Info("signed out")
	}

	if err := s.kv.Remove(TokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if err := s.kv.Remove(UserKey); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

// HandleUnauthorized signs out after the API rejects the token.
func (s *Session) HandleUnauthorized() {
	s.logger.Warn("API rejected the session token")
	if err := s.Logout(); err != nil {
		s.logger.Error("failed to clear session", "error", err)
	}
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a token is held and has not expired.
func (s *Session) IsAuthenticated() bool {
	_, err := s.Token()
	return err == nil
}

// HasRole reports whether the signed-in user holds role.
func (s *Session) HasRole(role string) bool {
	user := s.User()
	return user != nil && user.HasRole(role)
}

// Expiry returns the token's exp claim. ok is false when there is no token or no readable claim.
func (s *Session) Expiry() (exp time.Time, ok bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return time.Time{}, false
	}
	exp, err := expiryOf(token)
	if err != nil || exp.IsZero() {
		return time.Time{}, false
	}
	return exp, true
}

// Token implements [oauth2.TokenSource].
//
// It fails with [shared.ErrNotAuthenticated] when signed out and [shared.ErrTokenExpired] past the exp claim.
// Tokens that are not JWTs are passed through without an expiry.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	exp, err := expiryOf(token)
	if err != nil {
		s.logger.Debug("token has no readable expiry", "error", err)
	}
	if !exp.IsZero() && !s.now().Before(exp) {
		return nil, fmt.Errorf("%w: expired at %s", shared.ErrTokenExpired, exp.Format(time.RFC3339))
	}

	return &oauth2.Token{AccessToken: token, TokenType: "Bearer", Expiry: exp}, nil
}

// expiryOf reads the exp claim without verifying the signature; the server verifies.
func expiryOf(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}

// userFromToken builds a user from sub, roles/authorities and userId/id claims.
func userFromToken(token string) *models.User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	user := &models.User{}
	user.Username, _ = claims.GetSubject()

	for _, key := range []string{"userId", "id"} {
		if id, ok := claims[key].(float64); ok {
			user.ID = int64(id)
			break
		}
	}

	for _, key := range []string{"roles", "authorities"} {
		values, ok := claims[key].([]any)
		if !ok {
			continue
		}
		for _, v := range values {
			switch role := v.(type) {
			case string:
				user.Roles = append(user.Roles, models.Role(role))
			case map[string]any:
				if name, ok := role["name"].(string); ok {
					user.Roles = append(user.Roles, models.Role(name))
				} else if name, ok := role["authority"].(string); ok {
					user.Roles = append(user.Roles, models.Role(name))
				}
			}
		}
		break
	}

	return user
}

func usernameOf(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.Username
}
