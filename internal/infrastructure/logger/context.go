package logger

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID stamps the request ID onto the context so downstream layers,
// the gorm logger in particular, can correlate their entries with the HTTP
// request that triggered them.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID stamped on the context, or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
