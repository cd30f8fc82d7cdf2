// Package service provides key generation and hashing for API clients.
package service

// KeyService defines operations for API key secret generation and validation.
// Implementations must use cryptographically secure random generation and a
// memory-hard hashing algorithm, since key secrets are long-lived credentials.
type KeyService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain secret (shared with the client once) and its
	// hash (stored in the database).
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain secret.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret compares a plain secret against a stored hash in
	// constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
