package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/kyoolapp/lifestyle-sub000/internal/logging"
)

// ScriptRunner is the part of a redis client the limiter needs.
type ScriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

const incrWithExpire = `
	local current
	current = redis.call("INCR", KEYS[1])
	if current == 1 then
		redis.call("EXPIRE", KEYS[1], ARGV[1])
	end
	return current
`

// RateLimiter caps requests per key in a fixed window. With redis the window
// is shared by every agent process; without it a per-process token bucket
// per key is used instead.
type RateLimiter struct {
	redis  ScriptRunner
	limit  int64
	window time.Duration
	prefix string
	keyFn  func(r *http.Request) string
	// failOpen lets requests through when redis errors.
	failOpen bool

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewRateLimiter(client ScriptRunner, limit int64, window time.Duration, prefix string, keyFn func(r *http.Request) string, failOpen bool) *RateLimiter {
	if keyFn == nil {
		keyFn = GetClientIP
	}
	return &RateLimiter{
		redis:    client,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		keyFn:    keyFn,
		failOpen: failOpen,
		local:    map[string]*rate.Limiter{},
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		keySuffix := rl.keyFn(r)
		if keySuffix == "" {
			keySuffix = GetClientIP(r)
		}

		if rl.redis == nil {
			if !rl.localLimiter(keySuffix).Allow() {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		key := rl.prefix + keySuffix
		ttlSeconds := int64(rl.window.Seconds())
		if ttlSeconds < 1 {
			ttlSeconds = 1
		}
		result, err := rl.redis.Eval(r.Context(), incrWithExpire, []string{key}, ttlSeconds).Result()
		if err != nil {
			logging.Error("Rate limit Redis error", map[string]interface{}{"error": err.Error()})
			rl.unavailable(w, r, next)
			return
		}

		var count int64
		switch v := result.(type) {
		case int64:
			count = v
		case float64:
			count = int64(v)
		default:
			logging.Error("Rate limit Redis script returned unexpected type", map[string]interface{}{"type": fmt.Sprintf("%T", result)})
			rl.unavailable(w, r, next)
			return
		}

		if count > rl.limit {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) unavailable(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if rl.failOpen {
		next.ServeHTTP(w, r)
		return
	}
	writeError(w, http.StatusServiceUnavailable, "Rate limiting temporarily unavailable")
}

func (rl *RateLimiter) localLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.local[key]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		l = rate.NewLimiter(rate.Every(every), int(rl.limit))
		rl.local[key] = l
	}
	return l
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetClientIP extracts the client IP, preferring proxy headers.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
