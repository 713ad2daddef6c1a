package github

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
)

type rateLimitKind int

const (
	notRateLimited rateLimitKind = iota
	primaryRateLimit
	secondaryRateLimit
)

// defaultRetryAfter is used when a primary limit carries no usable reset hint
const defaultRetryAfter = 60 * time.Second

// classifyRateLimit decides whether an HTTP error is a quota exhaustion,
// an abuse detection, or neither
func classifyRateLimit(httpErr *api.HTTPError) rateLimitKind {
	if httpErr.StatusCode != http.StatusForbidden && httpErr.StatusCode != http.StatusTooManyRequests {
		return notRateLimited
	}

	msg := strings.ToLower(httpErr.Message)
	if strings.Contains(msg, "secondary rate limit") || strings.Contains(msg, "abuse") {
		return secondaryRateLimit
	}
	if httpErr.Headers.Get("X-RateLimit-Remaining") == "0" {
		return primaryRateLimit
	}
	if httpErr.Headers.Get("Retry-After") != "" {
		return secondaryRateLimit
	}
	return notRateLimited
}

// retryAfter reads Retry-After (seconds) or X-RateLimit-Reset (epoch seconds)
func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(now); d > 0 {
				return d
			}
			return 0
		}
	}
	return defaultRetryAfter
}
