// Package requestid propagates request IDs through contexts.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the response header carrying the request ID.
const Header = "X-Request-ID"

type ctxKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// New generates a request ID and returns the enriched context and the ID.
// A well-formed incoming ID is reused.
func New(ctx context.Context, incoming string) (context.Context, string) {
	id := incoming
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	return WithRequestID(ctx, id), id
}
