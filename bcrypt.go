package security

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword.Clone()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword.Clone()
		}
		return err
	}
	return nil
}

// PasswordVerifier checks default flow credentials against a static table
// of bcrypt hashes keyed by id.
type PasswordVerifier struct {
	hashes map[string]string

	dummyOnce sync.Once
	dummy     string
}

var _ CredentialVerifier = (*PasswordVerifier)(nil)

// NewPasswordVerifier copies hashes; later changes to the map are ignored.
func NewPasswordVerifier(hashes map[string]string) *PasswordVerifier {
	owned := make(map[string]string, len(hashes))
	for id, hash := range hashes {
		owned[id] = hash
	}
	return &PasswordVerifier{hashes: owned}
}

// VerifyCredentials reports whether password matches the hash stored for id.
// Unknown ids still pay for one bcrypt comparison.
func (v *PasswordVerifier) VerifyCredentials(ctx context.Context, id, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	hash, ok := v.hashes[id]
	if !ok {
		_ = bcrypt.CompareHashAndPassword([]byte(v.dummyHash()), []byte(password))
		return false, nil
	}

	if err := ComparePasswordAndHash(password, hash); err != nil {
		if IsMismatchedPassword(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (v *PasswordVerifier) dummyHash() string {
	v.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), passwordHashCost())
		if err == nil {
			v.dummy = string(h)
		}
	})
	return v.dummy
}
