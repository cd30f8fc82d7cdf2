package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/expenses/internal/errors"
)

// keyService implements KeyService using Argon2id for secret hashing.
type keyService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateSecret creates a new 32-byte random secret, base64 URL-encoded.
func (k *keyService) GenerateSecret() (plainSecret string, hashedSecret string, error error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret = base64.URLEncoding.EncodeToString(randomBytes)

	hashedSecret, err := k.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes a plain secret using Argon2id.
func (k *keyService) HashSecret(plainSecret string) (hashedSecret string, error error) {
	hashedSecret, err := k.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret performs a constant-time comparison between a plain secret
// and its hash.
func (k *keyService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := k.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// NewKeyService creates a KeyService using Argon2id with the Moderate policy.
func NewKeyService() KeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &keyService{
		hasher: hasher,
	}
}
