package credentials

import (
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	json "github.com/json-iterator/go"
)

// Session is what a successful login leaves behind.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name,omitempty"`
	Role        string    `json:"role"`
}

// IsExpired checks if the access token is expired. Tokens without an exp
// claim never expire client-side; the server still has the last word.
func (s *Session) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// IsValid checks if the session can authenticate a request
func (s *Session) IsValid() bool {
	return s != nil && s.AccessToken != "" && !s.IsExpired()
}

// TokenExpiry reads the exp claim without verifying the signature. Token
// issuance is the backend's job; the console only needs to know when to stop
// sending a token.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Store keeps the session on disk and in memory.
type Store struct {
	path string

	mu      sync.RWMutex
	current *Session
	loaded  bool
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load loads the session from disk; a missing file is not an error.
func (s *Store) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.current, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}

	s.current = &sess
	s.loaded = true
	return s.current, nil
}

// Save saves the session to disk
func (s *Store) Save(sess *Session) error {
	if sess.ExpiresAt.IsZero() {
		if exp, ok := TokenExpiry(sess.AccessToken); ok {
			sess.ExpiresAt = exp
		}
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// owner read/write only
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return err
	}
	s.current = sess
	s.loaded = true
	return nil
}

// Clear drops the session from memory and disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Current returns the in-memory session, loading it on first use.
func (s *Store) Current() *Session {
	sess, err := s.Load()
	if err != nil {
		return nil
	}
	return sess
}

// Token returns the bearer token of a valid session, or "".
func (s *Store) Token() string {
	sess := s.Current()
	if !sess.IsValid() {
		return ""
	}
	return sess.AccessToken
}

// Role returns the role of the current session, or "".
func (s *Store) Role() string {
	if sess := s.Current(); sess != nil {
		return sess.Role
	}
	return ""
}
