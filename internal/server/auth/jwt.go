// Package auth issues and parses the signed bearer credentials used by
// postbox: short-lived access tokens and long-lived refresh tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind separates access tokens from refresh tokens. A token of one
// kind is never accepted where the other is expected.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims holds the standard registered claims plus the username the token was
// issued for and its kind. ID (jti) is unique per token and is what
// logout puts on the revocation list.
type Claims struct {
	jwt.RegisteredClaims
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
}

// GenerateToken signs a new HS256 token of the given kind for username.
// The returned claims carry the generated jti and the expiry.
func GenerateToken(username string, kind TokenKind, secretKey []byte, validityDuration time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: username,
		Kind:     kind,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// ParseToken verifies the signature and expiry of tokenString and checks
// that it is of the expected kind. Expired tokens yield
// common.ErrTokenExpired; every other failure is common.ErrInvalidToken.
// Revocation is not checked here.
func ParseToken(tokenString string, kind TokenKind, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" || claims.Username == "" || claims.Kind != kind {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
