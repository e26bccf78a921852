package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
	"github.com/kyoolapp/lifestyle-sub000/internal/services"
)

// NotificationHandler serves the friend-request history. A nil store means
// history is disabled and every endpoint answers 503.
type NotificationHandler struct {
	store NotificationStore
}

func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

type NotificationListResponse struct {
	Notifications []models.NotificationRecord `json:"notifications"`
}

type NotificationUnreadCountResponse struct {
	Count int `json:"count"`
}

type NotificationMarkAllResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

func (h *NotificationHandler) ready(w http.ResponseWriter, r *http.Request) *services.Session {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Notification history is disabled")
		return nil
	}
	return requireSession(w, r)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	session := h.ready(w, r)
	if session == nil {
		return
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	var before *time.Time
	if beforeParam := r.URL.Query().Get("before"); beforeParam != "" {
		parsed, err := time.Parse(time.RFC3339, beforeParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid before timestamp")
			return
		}
		before = &parsed
	}

	notifications, err := h.store.List(r.Context(), session.UserID, services.NotificationListParams{
		Limit:      limit,
		UnreadOnly: r.URL.Query().Get("unread") == "1",
		Before:     before,
	})
	if err != nil {
		log.Printf("Error listing notifications: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if notifications == nil {
		notifications = []models.NotificationRecord{}
	}

	writeJSON(w, http.StatusOK, NotificationListResponse{Notifications: notifications})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	session := h.ready(w, r)
	if session == nil {
		return
	}

	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	err = h.store.MarkRead(r.Context(), session.UserID, notificationID)
	if errors.Is(err, services.ErrNotificationNotFound) {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		log.Printf("Error marking notification read: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	session := h.ready(w, r)
	if session == nil {
		return
	}

	updated, err := h.store.MarkAllRead(r.Context(), session.UserID)
	if err != nil {
		log.Printf("Error marking all notifications read: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, NotificationMarkAllResponse{Message: "Notifications marked as read", Updated: updated})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	session := h.ready(w, r)
	if session == nil {
		return
	}

	count, err := h.store.UnreadCount(r.Context(), session.UserID)
	if err != nil {
		log.Printf("Error counting notifications: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, NotificationUnreadCountResponse{Count: count})
}
