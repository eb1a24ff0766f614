package history

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/buildbeaver/chatdl/api/client"
	"github.com/buildbeaver/chatdl/common/gerror"
	"github.com/buildbeaver/chatdl/common/logger"
)

const (
	HeaderRateLimitRemaining  = "X-RateLimit-Remaining"
	HeaderRateLimitResetAfter = "X-RateLimit-Reset-After"
	HeaderRetryAfter          = "Retry-After"
)

// DefaultRetryDelay is used when a rate limited response does not say how long to wait.
const DefaultRetryDelay = time.Second

// rateLimitDocument is the body of a 429 response.
type rateLimitDocument struct {
	Message    string   `json:"message"`
	RetryAfter *float64 `json:"retry_after"`
	Global     bool     `json:"global"`
}

// RateLimitHandler recognises rate limited responses and waits out the delay the server asks for.
type RateLimitHandler struct {
	delay DelayFunc
	clk   clock.Clock
	log   logger.Log
}

func NewRateLimitHandler(delay DelayFunc, clk clock.Clock, logFactory logger.LogFactory) *RateLimitHandler {
	return &RateLimitHandler{
		delay: delay,
		clk:   clk,
		log:   logFactory("RateLimitHandler"),
	}
}

// IsRateLimited returns true if res was rate limited, after blocking for the delay the server
// specified. The caller should then reissue the same request. An error is returned only if the
// wait was interrupted.
func (h *RateLimitHandler) IsRateLimited(ctx context.Context, res *client.Response) (bool, error) {
	wait, limited := h.RetryDelay(res)
	if !limited {
		return false, nil
	}
	h.log.WithFields(logger.Fields{
		"status": res.StatusCode,
		"wait":   wait.String(),
	}).Info("rate limited")
	err := h.delay(ctx, wait)
	if err != nil {
		return true, gerror.NewErrRateLimited(err)
	}
	return true, nil
}

// RetryDelay decides whether res was rate limited and how long to wait before retrying.
// An exhausted bucket (X-RateLimit-Remaining: 0) waits for Retry-After; otherwise a 429 waits
// for retry_after from the body.
func (h *RateLimitHandler) RetryDelay(res *client.Response) (time.Duration, bool) {
	if remaining, ok := parseSeconds(res.Header.Get(HeaderRateLimitRemaining)); ok && remaining == 0 {
		return h.headerDelay(res.Header), true
	}
	if res.StatusCode == http.StatusTooManyRequests {
		return h.bodyDelay(res), true
	}
	return 0, false
}

// headerDelay reads Retry-After as either seconds or an HTTP date, falling back to
// X-RateLimit-Reset-After and then DefaultRetryDelay.
func (h *RateLimitHandler) headerDelay(header http.Header) time.Duration {
	retryAfter := strings.TrimSpace(header.Get(HeaderRetryAfter))
	if secs, ok := parseSeconds(retryAfter); ok {
		return secondsToDuration(secs)
	}
	if retryAfter != "" {
		if at, err := http.ParseTime(retryAfter); err == nil {
			wait := at.Sub(h.clk.Now())
			if wait < 0 {
				wait = 0
			}
			return wait
		}
		h.log.Warnf("Ignoring unparseable %s header: %q", HeaderRetryAfter, retryAfter)
	}
	if secs, ok := parseSeconds(header.Get(HeaderRateLimitResetAfter)); ok {
		return secondsToDuration(secs)
	}
	return DefaultRetryDelay
}

func (h *RateLimitHandler) bodyDelay(res *client.Response) time.Duration {
	doc := &rateLimitDocument{}
	err := json.Unmarshal(res.Body, doc)
	if err != nil {
		h.log.Warnf("Unable to parse rate limit response body, falling back to headers: %v", err)
		return h.headerDelay(res.Header)
	}
	if doc.Global {
		h.log.Warn("Hit the global rate limit")
	}
	if doc.RetryAfter == nil || *doc.RetryAfter < 0 {
		return h.headerDelay(res.Header)
	}
	return secondsToDuration(*doc.RetryAfter)
}

func parseSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, false
	}
	return secs, true
}

// maxDelaySeconds is the longest wait a time.Duration can hold.
var maxDelaySeconds = float64(math.MaxInt64) / float64(time.Second)

func secondsToDuration(secs float64) time.Duration {
	if secs >= maxDelaySeconds {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs * float64(time.Second))
}
