package middlewares

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Thresholds sets when a request counts as slow. File transfers get their
// own limit since they are expected to run far longer than JSON calls.
type Thresholds struct {
	Call     time.Duration
	Transfer time.Duration
}

func (t Thresholds) For(req *http.Request) time.Duration {
	if IsTransfer(req) && t.Transfer > 0 {
		return t.Transfer
	}
	return t.Call
}

// IsTransfer reports whether req uploads a multipart body or asks for a
// binary payload.
func IsTransfer(req *http.Request) bool {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		return true
	}
	return req.Header.Get("Accept") == "application/octet-stream"
}

func PerformanceMiddleware(thresholds Thresholds, logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next(req)

			elapsed := time.Since(start)
			threshold := thresholds.For(req)

			if threshold > 0 && elapsed > threshold {
				logger.Warn("Slow request", "URL", req.URL, "Method", req.Method, "Transfer", IsTransfer(req), "Elapsed", elapsed)
			}

			return resp, err
		}
	}
}
