package handlers

import (
	"context"
	"net/http"
	"time"
)

type HealthHandler struct {
	db    HealthChecker
	redis HealthChecker
}

// NewHealthHandler takes the optional stores; nil means the store is not
// configured and is reported as disabled.
func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	services := map[string]string{}
	check := func(name string, c HealthChecker) {
		if c == nil {
			services[name] = "disabled"
			return
		}
		if err := c.Health(ctx); err != nil {
			services[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			return
		}
		services[name] = "healthy"
	}
	check("postgres", h.db)
	check("redis", h.redis)

	resp := HealthResponse{Status: "ready", Services: services}
	if status != http.StatusOK {
		resp.Status = "not ready"
	}
	writeJSON(w, status, resp)
}
