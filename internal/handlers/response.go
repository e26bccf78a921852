package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/kyoolapp/lifestyle-sub000/internal/backend"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

const maxBodyBytes = 64 << 10

type contextKey string

const sessionContextKey contextKey = "session"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

// GetSessionFromContext returns the signed-in session attached by the session
// middleware, or nil.
func GetSessionFromContext(ctx context.Context) *services.Session {
	s, _ := ctx.Value(sessionContextKey).(*services.Session)
	return s
}

func SetSessionInContext(ctx context.Context, s *services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func requireSession(w http.ResponseWriter, r *http.Request) *services.Session {
	s := GetSessionFromContext(r.Context())
	if s == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return s
}

// writeBackendError maps a failed remote or action call onto a response. The
// backend's own detail message is passed through unchanged.
func writeBackendError(w http.ResponseWriter, op string, err error) {
	var reqErr *backend.RequestError
	var transportErr *backend.TransportError
	switch {
	case errors.Is(err, services.ErrActionInFlight):
		writeError(w, http.StatusConflict, "Action already in progress")
	case errors.Is(err, services.ErrMissingUserID), errors.Is(err, services.ErrSameUser), errors.Is(err, backend.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Backend request cancelled")
	case errors.As(err, &reqErr):
		status := reqErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeError(w, status, backend.Detail(err))
	case errors.As(err, &transportErr):
		log.Printf("Error %s: %v", op, err)
		writeError(w, http.StatusBadGateway, "Backend unavailable")
	default:
		log.Printf("Error %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
