package observability

import (
	"context"
	"strings"
)

type correlationKey struct{}

// WithCorrelationID returns ctx carrying the request correlation identifier.
// Blank identifiers leave ctx unchanged.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID extracts the correlation identifier from ctx, if present.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
