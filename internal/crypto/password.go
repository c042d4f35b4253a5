package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost the platform has always hashed with. Digests
// self-describe their cost, so raising it only affects new hashes.
const DefaultCost = 10

var (
	ErrPasswordMismatch = errors.New("password_mismatch")
	ErrCorruptHash      = errors.New("corrupt_password_hash")
)

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns nil on a match, ErrPasswordMismatch on a wrong
// password, and ErrCorruptHash when the stored digest cannot be parsed.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return ErrCorruptHash
}
