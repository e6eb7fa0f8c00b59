// Package session holds the client configuration and the bearer-token
// contract. Token acquisition itself (interactive OAuth, refresh) lives
// outside this module; the client only asks a TokenSource for a token.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies a bearer token for the Dataverse Web API.
type TokenSource interface {
	// Token returns a currently valid bearer token.
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource wraps a fixed token, useful for tests and short scripts.
type StaticTokenSource string

// Token returns the wrapped token.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("static token source is empty")
	}
	return string(s), nil
}

// TokenExpiry extracts the expiry claim from a bearer token without
// verifying its signature. Verification belongs to the issuer; the client
// only needs the expiry to decide when a refresh is due. A token without an
// expiry claim returns a zero time and no error.
func TokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse bearer token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// TokenExpired reports whether the token's expiry claim is in the past,
// applying the given leeway so callers refresh before the server starts
// rejecting requests.
func TokenExpired(token string, leeway time.Duration) bool {
	exp, err := TokenExpiry(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return time.Now().Add(leeway).After(exp)
}
