package logger

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID returns a context carrying id. Every log call made with the
// returned context includes it as request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func contextFields(ctx context.Context) []Field {
	if id := RequestID(ctx); id != "" {
		return []Field{String("request_id", id)}
	}
	return nil
}
