// Package auth resolves caller credentials to stable owner identities.
// The core trusts this resolution; token issuance happens elsewhere.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when no valid owner identity can be
// resolved from the presented credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity resolves a bearer credential to an owner id.
type Identity interface {
	Resolve(ctx context.Context, bearer string) (ownerID string, err error)
}

// JWTIdentity verifies HS256 bearer tokens. The owner id is taken from the
// "userId" claim, falling back to the registered "sub" claim.
type JWTIdentity struct {
	secret []byte
}

// NewJWTIdentity creates a gate verifying tokens signed with secret.
func NewJWTIdentity(secret string) (*JWTIdentity, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	return &JWTIdentity{secret: []byte(secret)}, nil
}

// Resolve verifies the token and returns the owner id.
func (j *JWTIdentity) Resolve(ctx context.Context, bearer string) (string, error) {
	if bearer == "" {
		return "", ErrUnauthenticated
	}

	token, err := jwt.Parse(bearer, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthenticated
	}

	if userID, ok := claims["userId"].(string); ok && userID != "" {
		return userID, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}

	return "", ErrUnauthenticated
}

// StaticIdentity maps fixed tokens to owner ids. Test and development use.
type StaticIdentity map[string]string

// Resolve looks the bearer up in the static table.
func (s StaticIdentity) Resolve(ctx context.Context, bearer string) (string, error) {
	if ownerID, ok := s[bearer]; ok {
		return ownerID, nil
	}
	return "", ErrUnauthenticated
}
