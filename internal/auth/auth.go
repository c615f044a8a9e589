// Package auth supplies the authenticated principal for every request: a
// session cookie carrying a signed token, verified against the user store.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bookwish/internal/constants"
	"bookwish/internal/domain"
	"bookwish/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type ctxKey struct{}

type Service struct {
	DB     *store.DB
	Tokens TokenService

	// anyUserExists gates the first-run flow. Once a user is observed the
	// flag stays set for the process lifetime; user deletion down to zero
	// is not a supported path back to /init.
	mu            sync.Mutex
	anyUserExists bool
}

func NewService(db *store.DB, secret string) *Service {
	return &Service{
		DB: db,
		Tokens: TokenService{
			Secret:   []byte(secret),
			Duration: constants.SessionTTL,
		},
	}
}

// UserExists reports whether any user has been created yet. The first call
// after startup checks the store; later calls are answered from the flag.
func (s *Service) UserExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anyUserExists {
		return true, nil
	}
	count, err := s.DB.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		s.anyUserExists = true
	}
	return s.anyUserExists, nil
}

// CreateUser hashes the password and inserts the user.
func (s *Service) CreateUser(ctx context.Context, username, password string, group domain.Group) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Group:        group,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.anyUserExists = true
	s.mu.Unlock()
	return u, nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.DB.GetUser(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if u == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.Tokens.Sign(u)
}

// SessionCookie builds the cookie carrying the session token.
func SessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// UserFromContext returns the authenticated user placed by the middleware.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKey{}).(*domain.User)
	return u
}

// Authenticate resolves the session cookie to a user and stores it in the
// request context. Browser navigation without a session is redirected to
// the login page; non-GET calls get a plain 401.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.userFromRequest(r)
		if user == nil {
			rejectUnauthenticated(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGroup gates a route on trust level. Runs after Authenticate.
func RequireGroup(group domain.Group) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				rejectUnauthenticated(w, r)
				return
			}
			if !user.Group.AtLeast(group) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FirstRunRedirect forces browser navigation to /init until a user exists,
// and away from /init afterwards.
func (s *Service) FirstRunRedirect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		exists, err := s.UserExists(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !exists && r.URL.Path != "/init" {
			http.Redirect(w, r, "/init", http.StatusSeeOther)
			return
		}
		if exists && r.URL.Path == "/init" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) userFromRequest(r *http.Request) *domain.User {
	cookie, err := r.Cookie(constants.SessionCookie)
	if err != nil {
		return nil
	}
	claims, err := s.Tokens.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	// Re-read the user so deletions and group changes take effect before
	// the token expires.
	u, err := s.DB.GetUser(r.Context(), claims.Username)
	if err != nil || u == nil {
		return nil
	}
	return u
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "invalid credentials", http.StatusUnauthorized)
}
