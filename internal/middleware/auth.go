package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyAuth guards the local API. Clients present the key as a bearer token
// or in X-API-Key; the agent only stores its bcrypt hash. An empty hash
// disables the check.
type APIKeyAuth struct {
	hash []byte

	mu       sync.Mutex
	verified [sha256.Size]byte
	ok       bool
}

func NewAPIKeyAuth(bcryptHash string) *APIKeyAuth {
	return &APIKeyAuth{hash: []byte(strings.TrimSpace(bcryptHash))}
}

func (a *APIKeyAuth) Enabled() bool {
	return len(a.hash) > 0
}

func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		key := presentedKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !a.check(key) {
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// check remembers the digest of the last accepted key so bcrypt only runs
// when the key changes.
func (a *APIKeyAuth) check(key string) bool {
	digest := sha256.Sum256([]byte(key))

	a.mu.Lock()
	if a.ok && subtle.ConstantTimeCompare(digest[:], a.verified[:]) == 1 {
		a.mu.Unlock()
		return true
	}
	a.mu.Unlock()

	if bcrypt.CompareHashAndPassword(a.hash, []byte(key)) != nil {
		return false
	}

	a.mu.Lock()
	a.verified = digest
	a.ok = true
	a.mu.Unlock()
	return true
}

func presentedKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
