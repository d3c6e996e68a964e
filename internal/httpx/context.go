package httpx

import (
	"context"
	"net/http"

	"bookcatalog/internal/entity"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	requestIDKey contextKey = "requestID"
)

// PrincipalFrom returns the authenticated user of the request, or nil.
func PrincipalFrom(r *http.Request) *entity.User {
	if v, ok := r.Context().Value(principalKey).(*entity.User); ok {
		return v
	}
	return nil
}

// ContextWithPrincipal returns a new context carrying the principal.
func ContextWithPrincipal(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
