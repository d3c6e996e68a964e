package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookcatalog/internal/entity"
)

const bearerPrefix = "Bearer "

// UserFinder looks up the account a verified token points at.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (entity.User, error)
}

// Resolver turns the Authorization header of a request into the current principal.
type Resolver struct {
	tokens *TokenService
	users  UserFinder
}

func NewResolver(tokens *TokenService, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns nil without error when no bearer token is present, or when
// the token names a user that no longer exists. A token that fails
// verification is an error: the caller must reject the whole request.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (*entity.User, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, nil
	}

	claims, err := r.tokens.Verify(strings.TrimPrefix(authorization, bearerPrefix))
	if err != nil {
		return nil, err
	}

	u, err := r.users.GetUserByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	return &u, nil
}
