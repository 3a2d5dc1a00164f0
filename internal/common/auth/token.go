// internal/common/auth/token.go
package auth

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore reads the persisted access token. The file is re-read when its
// modification time changes, so a login performed by another process is
// picked up without a restart.
type TokenStore struct {
	path     string
	static   string
	now      func() time.Time
	mu       sync.Mutex
	cached   string
	cachedAt time.Time
}

func NewTokenStore(path, static string) *TokenStore {
	return &TokenStore{path: path, static: static, now: time.Now}
}

// Token returns the bearer token to attach, or "" when there is none or the
// token is a JWT whose exp has passed.
func (s *TokenStore) Token() string {
	token := strings.TrimSpace(s.static)
	if token == "" {
		token = s.readFile()
	}
	if token == "" || s.expired(token) {
		return ""
	}
	return token
}

func (s *TokenStore) readFile() string {
	if s.path == "" {
		return ""
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !info.ModTime().After(s.cachedAt) && s.cached != "" {
		return s.cached
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	s.cached = strings.TrimSpace(string(data))
	s.cachedAt = info.ModTime()
	return s.cached
}

// expired only inspects the exp claim; signature verification is the
// backend's job. Opaque (non-JWT) tokens are never considered expired.
func (s *TokenStore) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return s.now().After(claims.ExpiresAt.Time)
}
