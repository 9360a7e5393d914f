// Package auth issues and verifies the HS256 bearer tokens that guard the
// authoring API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "coursekeeper"

// Claims identifies the author a token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	AuthorID string `json:"author_id"`
}

func GenerateToken(authorID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AuthorID: authorID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetAuthorIDFromToken verifies tokenString and returns its author id.
// Expired tokens yield common.ErrTokenExpired; every other failure
// matches common.ErrInvalidToken.
func GetAuthorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.AuthorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AuthorID, nil
}
