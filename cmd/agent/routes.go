package main

import (
	"net/http"

	"github.com/kyoolapp/lifestyle-sub000/internal/handlers"
	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
	"github.com/kyoolapp/lifestyle-sub000/internal/middleware"
)

type routeDeps struct {
	logger       *logging.Logger
	apiKey       *middleware.APIKeyAuth
	sessions     *middleware.SessionMiddleware
	limiter      *middleware.RateLimiter
	health       *handlers.HealthHandler
	session      *handlers.SessionHandler
	user         *handlers.UserHandler
	friend       *handlers.FriendHandler
	presence     *handlers.PresenceHandler
	notification *handlers.NotificationHandler
	water        *handlers.WaterHandler
}

func newRouter(d routeDeps) http.Handler {
	// Local API surface: API key, then a signed-in session, then the per-user limit.
	keyed := func(h http.Handler) http.Handler { return d.apiKey.Middleware(h) }
	protected := func(fn http.HandlerFunc) http.Handler {
		return keyed(d.sessions.RequireSession(d.limiter.Middleware(fn)))
	}

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", d.health.Health)
	mux.HandleFunc("GET /ready", d.health.Ready)

	// Session endpoints
	mux.Handle("POST /api/session", keyed(d.limiter.Middleware(http.HandlerFunc(d.session.SignIn))))
	mux.Handle("DELETE /api/session", keyed(http.HandlerFunc(d.session.SignOut)))

	// Profile and search
	mux.Handle("GET /api/me", protected(d.user.Me))
	mux.Handle("PUT /api/me", protected(d.user.UpdateMe))
	mux.Handle("GET /api/me/metrics", protected(d.user.Metrics))
	mux.Handle("GET /api/users/search", protected(d.user.Search))
	mux.Handle("GET /api/users/{id}/friendship-status", protected(d.user.FriendshipStatus))

	// Friend endpoints
	mux.Handle("GET /api/friends", protected(d.friend.List))
	mux.Handle("GET /api/friends/requests", protected(d.friend.Requests))
	mux.Handle("POST /api/friends/requests", protected(d.friend.SendRequest))
	mux.Handle("POST /api/friends/requests/{id}/accept", protected(d.friend.AcceptRequest))
	mux.Handle("POST /api/friends/requests/{id}/reject", protected(d.friend.RejectRequest))
	mux.Handle("POST /api/friends/requests/{id}/revoke", protected(d.friend.RevokeRequest))
	mux.Handle("DELETE /api/friends/{id}", protected(d.friend.Remove))

	// Presence endpoints
	mux.Handle("GET /api/presence", protected(d.presence.Get))
	mux.Handle("PUT /api/presence/visibility", protected(d.presence.SetVisibility))
	mux.Handle("POST /api/presence/interaction", protected(d.presence.Interaction))
	mux.Handle("POST /api/presence/refresh", protected(d.presence.Refresh))

	// Notification history
	mux.Handle("GET /api/notifications", protected(d.notification.List))
	mux.Handle("GET /api/notifications/unread-count", protected(d.notification.UnreadCount))
	mux.Handle("POST /api/notifications/{id}/read", protected(d.notification.MarkRead))
	mux.Handle("POST /api/notifications/read-all", protected(d.notification.MarkAllRead))

	// Water endpoints
	mux.Handle("GET /api/water/today", protected(d.water.Today))
	mux.Handle("POST /api/water/log", protected(d.water.Log))
	mux.Handle("PUT /api/water", protected(d.water.Set))
	mux.Handle("GET /api/water/history", protected(d.water.History))

	var handler http.Handler = mux
	handler = middleware.NewRequestLogger(d.logger).Apply(handler)
	return handler
}
