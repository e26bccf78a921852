package handlers

import (
	"net/http"
	"strings"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

// FriendHandler exposes the session's social lists and actions. Path ids are
// always the counterpart's user id: the sender for accept and reject, the
// receiver for revoke.
type FriendHandler struct{}

func NewFriendHandler() *FriendHandler {
	return &FriendHandler{}
}

type FriendListResponse struct {
	Friends []models.User `json:"friends"`
}

type FriendRequestsResponse struct {
	Incoming []models.FriendRequest `json:"incoming"`
	Outgoing []models.FriendRequest `json:"outgoing"`
	Loading  []string               `json:"loading"`
}

type SendFriendRequestRequest struct {
	UserID string `json:"user_id"`
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, FriendListResponse{Friends: session.Social.Snapshot().Friends})
}

func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	snap := session.Social.Snapshot()
	writeJSON(w, http.StatusOK, FriendRequestsResponse{
		Incoming: snap.Incoming,
		Outgoing: snap.Outgoing,
		Loading:  snap.Loading,
	})
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}

	var req SendFriendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.UserID == session.UserID {
		writeError(w, http.StatusBadRequest, "Cannot send friend request to yourself")
		return
	}

	if err := session.Social.SendFriendRequest(r.Context(), req.UserID); err != nil {
		writeBackendError(w, "sending friend request", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Friend request sent"})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	if err := session.Social.AcceptFriendRequest(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, "accepting friend request", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request accepted"})
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	if err := session.Social.RejectFriendRequest(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, "rejecting friend request", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request rejected"})
}

func (h *FriendHandler) RevokeRequest(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	if err := session.Social.RevokeFriendRequest(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, "revoking friend request", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request revoked"})
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r)
	if session == nil {
		return
	}
	if err := session.Social.RemoveFriend(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, "removing friend", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend removed"})
}
