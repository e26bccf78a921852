package handlers

import (
	"net/http"
	"time"

	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

type PresenceHandler struct{}

func NewPresenceHandler() *PresenceHandler {
	return &PresenceHandler{}
}

type PresenceResponse struct {
	Presence         services.PresenceSnapshot `json:"presence"`
	RequestsInterval string                    `json:"requests_interval"`
}

type VisibilityRequest struct {
	Foreground *bool `json:"foreground"`
}

type InteractionResponse struct {
	Recorded bool `json:"recorded"`
}

func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, PresenceResponse{
		Presence:         session.Presence.Snapshot(),
		RequestsInterval: session.Presence.RequestsInterval().Round(time.Second).String(),
	})
}

// SetVisibility tells the agent whether a UI surface is in the foreground,
// which speeds up the friend-request poll.
func (h *PresenceHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	var req VisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Foreground == nil {
		writeError(w, http.StatusBadRequest, "foreground is required")
		return
	}

	session.Presence.SetForeground(*req.Foreground)
	writeJSON(w, http.StatusOK, PresenceResponse{
		Presence:         session.Presence.Snapshot(),
		RequestsInterval: session.Presence.RequestsInterval().Round(time.Second).String(),
	})
}

// Interaction reports user activity. Calls inside the throttle window are
// accepted but not forwarded.
func (h *PresenceHandler) Interaction(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, InteractionResponse{Recorded: session.Heartbeat.Interaction()})
}

func (h *PresenceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	session.Presence.RefreshFriends()
	session.Presence.RefreshRequests()
	session.Presence.RefreshWater()
	writeJSON(w, http.StatusAccepted, MessageResponse{Message: "Refresh scheduled"})
}
