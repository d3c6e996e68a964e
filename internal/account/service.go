package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/entity"
)

type Service struct {
	repo   Repository
	creds  CredentialVerifier
	tokens TokenIssuer
	log    logrus.FieldLogger
}

func NewService(repo Repository, creds CredentialVerifier, tokens TokenIssuer, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, creds: creds, tokens: tokens, log: log}
}

// CreateUser registers a new account. Schema violations and taken usernames
// both surface as ErrUserValidation carrying the username.
func (s *Service) CreateUser(ctx context.Context, username, favoriteGenre string) (entity.User, error) {
	u := entity.User{Username: username, FavoriteGenre: favoriteGenre}
	if err := entity.Validate(u); err != nil {
		return entity.User{}, apperr.WithArg(apperr.ErrUserValidation, username, err)
	}

	if err := s.repo.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, entity.ErrDuplicate) || errors.Is(err, entity.ErrInvalid) {
			return entity.User{}, apperr.WithArg(apperr.ErrUserValidation, username, err)
		}
		return entity.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user created")
	return u, nil
}

// Login returns a signed token for username. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			return "", fmt.Errorf("find user: %w", err)
		}
		s.log.WithField("username", username).Debug("login for unknown user")
		return "", apperr.ErrInvalidCredentials
	}
	if !s.creds.Verify(u, password) {
		return "", apperr.ErrInvalidCredentials
	}

	return s.tokens.Issue(u.Username, u.ID)
}
