package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAuthenticated is returned by callers that require a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Roles understood by the dashboard.
const (
	RoleSpecialist  = "especialista"
	RoleResponsible = "responsavel"
)

// Profile is the logged-in user as returned by the login endpoint.
type Profile struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"nome,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Session holds the bearer token and profile of the current user.
// It is created on login, cleared on logout, and read everywhere else.
type Session struct {
	mu        sync.RWMutex
	token     string
	profile   *Profile
	expiresAt time.Time
	now       func() time.Time
}

// New returns an empty, unauthenticated session.
func New() *Session {
	return &Session{now: time.Now}
}

// Login replaces the current credentials. The token's exp claim, when
// present, bounds how long Token keeps returning it. The signature is
// not checked here; the upstream API does that.
func (s *Session) Login(token string, profile Profile) {
	exp := expiry(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	p := profile
	s.profile = &p
	s.expiresAt = exp
}

// Logout clears the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	s.expiresAt = time.Time{}
}

// Token returns the bearer token, or "" when absent or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return ""
	}
	return s.token
}

// Profile returns a copy of the logged-in profile.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil || s.expiredLocked() {
		return Profile{}, false
	}
	return *s.profile, true
}

// Authenticated reports whether a usable token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt returns the token expiry; the zero time means none was declared.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) expiredLocked() bool {
	return !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt)
}

func expiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
