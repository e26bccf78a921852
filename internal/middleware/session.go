package middleware

import (
	"net/http"

	"github.com/kyoolapp/lifestyle-sub000/internal/handlers"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

// SessionSource yields the running session of the signed-in user.
type SessionSource interface {
	Current() (*services.Session, error)
}

type SessionMiddleware struct {
	sessions SessionSource
}

func NewSessionMiddleware(sessions SessionSource) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// RequireSession attaches the current session to the request context and
// rejects the request with 401 when nobody is signed in.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.sessions.Current()
		if err != nil || session == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(handlers.SetSessionInContext(r.Context(), session)))
	})
}

// SessionUserKey keys rate limits by signed-in user, falling back to the
// client address.
func SessionUserKey(r *http.Request) string {
	if session := handlers.GetSessionFromContext(r.Context()); session != nil {
		return "user:" + session.UserID
	}
	return GetClientIP(r)
}
