package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"bookcatalog/internal/apperr"
)

// Claims identify the principal a token was issued to. Tokens carry no expiry.
type Claims struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens with a process-wide secret.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs the given identity. The same claims always produce the same token.
func (s *TokenService) Issue(username, id string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: username, ID: id})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and structure of tokenStr and returns its claims.
// Every failure wraps apperr.ErrInvalidToken. Segments must be canonical
// base64url, so trailing padding bits cannot be altered either.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithStrictDecoding())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, jwt.ErrTokenInvalidClaims)
	}
	if claims.ID == "" || claims.Username == "" {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, errors.New("missing identity claims"))
	}
	return claims, nil
}
