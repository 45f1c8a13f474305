package httpclients

import (
	"context"
	"time"

	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/platformerrors"

	"resty.dev/v3"
)

type httpClientStartsAt struct{}

// NewClient returns a resty client that forwards the request id and logs
// status and latency of every call. Bodies are never logged since they may
// carry tokens.
func NewClient(clientName string, timeout time.Duration) *resty.Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		ctx := context.WithValue(r.Context(), httpClientStartsAt{}, time.Now())
		if requestID, ok := ctx.Value(platformerrors.RequestIDKey{}).(string); ok && requestID != "" {
			r.SetHeader("X-Request-Id", requestID)
		}
		r.SetContext(ctx)
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		startTime, _ := r.Request.Context().Value(httpClientStartsAt{}).(time.Time)
		requestID, _ := r.Request.Context().Value(platformerrors.RequestIDKey{}).(string)

		event := log.Debug().
			Str("request_id", requestID).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Dur("latency", time.Since(startTime))
		if raw := r.Request.RawRequest; raw != nil && raw.URL != nil {
			event = event.Str("host", raw.URL.Host).Str("path", raw.URL.Path)
		}
		event.Msg("HTTP client request")
		return nil
	})
	return client
}
