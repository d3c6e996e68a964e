package httpx

import (
	"context"
	"errors"
	"net/http"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/entity"
)

// PrincipalResolver maps an Authorization header to the current user.
type PrincipalResolver interface {
	Resolve(ctx context.Context, authorization string) (*entity.User, error)
}

// PrincipalMiddleware attaches the request's principal to its context.
// Requests without a bearer token pass through anonymously; a token that
// fails verification rejects the whole request.
func PrincipalMiddleware(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, apperr.ErrInvalidToken) {
					JSONError(w, r, http.StatusUnauthorized, apperr.Code(err), "Invalid token", nil)
					return
				}
				WriteError(w, r, err)
				return
			}
			if principal != nil {
				recordUserID(r.Context(), principal.ID)
				r = r.WithContext(ContextWithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}
