// Package jwtauth mints and verifies the HS256 bearer tokens identifying
// the callers of the daemon. The subject of a token is the caller address.
package jwtauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer = "rampd"

	bearerPrefix = "Bearer "
)

var (
	ErrMissingSecret  = errors.New("missing jwt secret")
	ErrMissingSubject = errors.New("missing token subject")
	ErrMissingToken   = errors.New("missing bearer token")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// NewToken returns a signed token for subject, valid for ttl. A zero ttl
// means the token never expires.
func NewToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) <= 0 {
		return "", ErrMissingSecret
	}
	if subject == "" {
		return "", ErrMissingSubject
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies the given token and returns its subject.
func ParseToken(secret []byte, token string) (string, error) {
	if len(secret) <= 0 {
		return "", ErrMissingSecret
	}
	if token == "" {
		return "", ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(
		token, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// FromHeader extracts the token from an Authorization header value.
func FromHeader(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Header returns the Authorization header value for the given token.
func Header(token string) string {
	return bearerPrefix + token
}
