package service

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AuthService validates the caller's API key. When a bcrypt hash is
// configured it takes precedence; otherwise the plain key is compared in
// constant time.
type AuthService struct {
	key     string
	keyHash string
}

func NewAuthService(key, keyHash string) *AuthService {
	return &AuthService{
		key:     key,
		keyHash: keyHash,
	}
}

func (s *AuthService) ValidateKey(candidate string) bool {
	if candidate == "" {
		return false
	}
	if s.keyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.keyHash), []byte(candidate)) == nil
	}
	if s.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.key), []byte(candidate)) == 1
}
