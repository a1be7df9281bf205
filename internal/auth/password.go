package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost 12 keeps a hash around 250ms on current hardware, slow enough to
// blunt offline cracking without stalling the login path.
const bcryptCost = 12

// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte
// input limit. Rejecting beats silently truncating.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
