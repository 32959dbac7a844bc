// Package ratelimit implements a fixed-window request limiter backed by
// Redis, so limits hold across multiple API instances.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

const keyPrefix = "warden:ratelimit"

// Middleware limits requests per client IP within a fixed window.
type Middleware struct {
	client rueidis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

// New creates a rate limiting middleware. Windows shorter than one
// second are clamped to one second, the smallest granularity the
// fixed-window keys can express.
func New(client rueidis.Client, limit int, window time.Duration, logger *zap.Logger) *Middleware {
	if window < time.Second {
		window = time.Second
	}

	return &Middleware{
		client: client,
		limit:  limit,
		window: window,
		logger: logger.Named("ratelimit"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware enforcing the limit.
// Redis failures fail open so an unavailable limiter never takes the API
// down with it.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		ctx := req.Context()

		windowSecs := int64(m.window.Seconds())
		windowStart := time.Now().Unix() / windowSecs
		key := fmt.Sprintf("%s:%s:%d", keyPrefix, clientIP(req.Request), windowStart)

		count, err := m.client.Do(ctx, m.client.B().Incr().Key(key).Build()).AsInt64()
		if err != nil {
			m.logger.Error("Rate limit check failed", zap.Error(err))
			return next(w, req)
		}

		if count == 1 {
			if err := m.client.Do(ctx,
				m.client.B().Expire().Key(key).Seconds(windowSecs).Build()).Error(); err != nil {
				m.logger.Error("Failed to set rate limit key expiry", zap.Error(err))
			}
		}

		if count > int64(m.limit) {
			retryAfter := (windowStart+1)*windowSecs - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}

			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)

			return nil
		}

		return next(w, req)
	}
}

// clientIP extracts the client address, honoring X-Forwarded-For when the
// API sits behind a reverse proxy.
func clientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}
