package middlewares

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// RetryHandler defines parameters for retrying idempotent HTTP requests.
// Nothing is retried unless a caller installs RetryMiddleware.
type RetryHandler struct {
	MinWait    time.Duration
	MaxWait    time.Duration
	RetryCount int
	Backoff    BackoffTime
}

// shouldRetry only retries GET requests whose failure is likely transient.
// Timeouts are never retried: the per-call deadline already expired.
func (rh *RetryHandler) shouldRetry(ctx context.Context, req *http.Request, resp *http.Response, err error) bool {
	if req.Method != http.MethodGet {
		return false
	}

	if ctx.Err() != nil {
		return false
	}

	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return false
		}
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}

	return false
}

// RetryMiddleware retries requests according to the RetryHandler
// configuration. The last response or error is handed back unchanged so the
// caller still classifies the final attempt.
func RetryMiddleware(rh RetryHandler) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			var resp *http.Response
			var err error

			for attempt := 0; ; attempt++ {
				resp, err = next(req)

				if !rh.shouldRetry(req.Context(), req, resp, err) || attempt >= rh.RetryCount {
					return resp, err
				}

				wait := rh.Backoff(attempt, rh.MinWait, rh.MaxWait, resp)

				if resp != nil {
					resp.Body.Close()
				}

				timer := time.NewTimer(wait)
				select {
				case <-req.Context().Done():
					timer.Stop()
					return nil, fmt.Errorf("%s %s giving up after %d attempt(s): %w",
						req.Method, req.URL, attempt+1, req.Context().Err())
				case <-timer.C:
				}
			}
		}
	}
}

// BackoffTime returns how long to wait before the next attempt.
type BackoffTime func(retry int, minWait, maxWait time.Duration, resp *http.Response) time.Duration

// ExponentialBackoffTime doubles minWait on every attempt and caps the wait at
// maxWait. A Retry-After header given in seconds on a 429 or 503 response
// takes precedence.
func ExponentialBackoffTime(retry int, minWait, maxWait time.Duration, resp *http.Response) time.Duration {
	if wait, ok := retryAfter(resp); ok {
		return wait
	}

	wait := math.Pow(2, float64(retry)) * float64(minWait)
	if wait > float64(maxWait) {
		return maxWait
	}

	return time.Duration(wait)
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}

	seconds, err := strconv.ParseInt(resp.Header.Get("Retry-After"), 10, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
