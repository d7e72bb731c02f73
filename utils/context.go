package utils

import "context"

type contextKey string

// Request-scoped context keys populated by handlers
const (
	RequestIDKey contextKey = "request_id"
	EndpointKey  contextKey = "endpoint"
)

// RequestIDFromContext returns the request id stored in ctx, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// EndpointFromContext returns the handler endpoint name stored in ctx, or ""
func EndpointFromContext(ctx context.Context) string {
	endpoint, _ := ctx.Value(EndpointKey).(string)
	return endpoint
}
