package account

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bookcatalog/internal/entity"
)

// SharedSecretVerifier accepts one password for every account. Only a bcrypt
// hash of the secret is kept in memory.
type SharedSecretVerifier struct {
	hash []byte
}

func NewSharedSecretVerifier(secret string, cost int) (*SharedSecretVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash shared secret: %w", err)
	}
	return &SharedSecretVerifier{hash: hash}, nil
}

func (v *SharedSecretVerifier) Verify(_ entity.User, password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}
