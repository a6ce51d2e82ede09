// Package passwordadapter implements password hashing with bcrypt.
package passwordadapter

import (
	"golang.org/x/crypto/bcrypt"

	"ballotbox/contexts/identity-access/auth-service/ports"
)

type BcryptHasher struct {
	// Cost of zero uses the bcrypt default.
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var _ ports.PasswordHasher = BcryptHasher{}
