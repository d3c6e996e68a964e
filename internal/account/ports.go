package account

import (
	"context"

	"bookcatalog/internal/entity"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=account

// Repository stores user accounts. Usernames are unique.
type Repository interface {
	CreateUser(ctx context.Context, u *entity.User) error
	GetUserByUsername(ctx context.Context, username string) (entity.User, error)
	GetUserByID(ctx context.Context, id string) (entity.User, error)
}

// CredentialVerifier decides whether password is valid for u.
type CredentialVerifier interface {
	Verify(u entity.User, password string) bool
}

// TokenIssuer signs a bearer token for an identity.
type TokenIssuer interface {
	Issue(username, id string) (string, error)
}
