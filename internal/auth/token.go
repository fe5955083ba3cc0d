package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner mints and verifies HS256 bearer tokens whose subject is the username.
type TokenSigner struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenSigner(secretKey []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secretKey: secretKey, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for username and the token id it carries.
func (s *TokenSigner) Issue(username string) (string, string, error) {
	if username == "" {
		return "", "", errors.New("username is required")
	}

	tokenID := uuid.New().String()
	issuedAt := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        tokenID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, tokenID, nil
}

// Verify checks signature and expiry and returns the subject and token id.
func (s *TokenSigner) Verify(tokenString string) (string, string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", "", errors.New("missing sub claim")
	}

	return claims.Subject, claims.ID, nil
}
