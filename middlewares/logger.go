package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader correlates client log lines with server logs.
const RequestIDHeader = "X-Request-Id"

func LoggerMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
				r.Header.Set(RequestIDHeader, requestID)
			}

			logger.Info("Executing request", "URL", r.URL, "Method", r.Method, "RequestID", requestID)

			response, err := next(r)

			if err != nil {
				logger.Error("Error on request", "URL", r.URL, "RequestID", requestID, "Error", err.Error())
				return response, err
			}

			logger.Debug("Request completed", "URL", r.URL, "RequestID", requestID, "Status", response.StatusCode)

			return response, err
		}
	}
}
