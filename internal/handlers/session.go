package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/identity"
)

type SessionHandler struct {
	verifier identity.Verifier
	store    IdentitySink
}

func NewSessionHandler(verifier identity.Verifier, store IdentitySink) *SessionHandler {
	return &SessionHandler{verifier: verifier, store: store}
}

type SignInRequest struct {
	IDToken string `json:"id_token"`
}

type SessionResponse struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	DisplayName   string    `json:"display_name,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SignIn verifies a Firebase ID token and makes its subject the signed-in
// user. Posting a fresh token for the same user refreshes the credential.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, http.StatusBadRequest, "id_token is required")
		return
	}

	id, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		log.Printf("Rejected ID token: %v", err)
		writeError(w, http.StatusUnauthorized, "Invalid ID token")
		return
	}

	h.store.SignIn(id)
	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:        id.UID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		DisplayName:   id.DisplayName,
		ExpiresAt:     id.ExpiresAt,
	})
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.store.SignOut()
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Signed out"})
}
