package user

import (
	"crypto/subtle"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Password hashing modes
const (
	HashingPlainText = "plaintext"
	HashingBcrypt    = "bcrypt"
)

// Hasher turns passwords into their stored form and checks candidates against it.
type Hasher interface {
	Hash(pwd string) (string, error)
	Matches(stored, pwd string) bool
}

func NewHasher(mode string) (Hasher, error) {
	switch strings.ToLower(mode) {
	case "", HashingPlainText:
		return PlainTextHasher{}, nil
	case HashingBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, errors.Errorf("unknown password hashing mode %q", mode)
	}
}

// PlainTextHasher stores passwords as-is and compares them byte for byte.
// Only suitable for demo data.
type PlainTextHasher struct{}

func (PlainTextHasher) Hash(pwd string) (string, error) { return pwd, nil }

func (PlainTextHasher) Matches(stored, pwd string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pwd)) == 1
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), h.Cost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

func (BcryptHasher) Matches(stored, pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pwd)) == nil
}
