package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 12

// apiKeyPrefix marks keys issued by this service so leaked keys are
// recognizable in logs and secret scanners
const apiKeyPrefix = "nbk_"

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateAPIKey generates a prefixed random API key
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return apiKeyPrefix + base64.URLEncoding.EncodeToString(b), nil
}

// HashAPIKey hashes an API key using SHA-256
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return base64.URLEncoding.EncodeToString(hash[:])
}

// GetAPIKeyPrefix returns the identifying head of an API key, the service
// prefix plus the first characters of the random part
func GetAPIKeyPrefix(apiKey string) string {
	const visible = len(apiKeyPrefix) + 8
	if strings.HasPrefix(apiKey, apiKeyPrefix) && len(apiKey) >= visible {
		return apiKey[:visible]
	}
	if len(apiKey) < 8 {
		return apiKey
	}
	return apiKey[:8]
}

// HashRefreshToken hashes a refresh token using SHA-256
func HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(hash[:])
}
