package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

// Claims carries the identity encoded in a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// GenerateToken issues an HS256-signed bearer token for the user. The token
// is stateless: nothing is persisted and there is no revocation list, so it
// stays valid until expiry.
func GenerateToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errs.ErrConfiguration
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})

	return token.SignedString(secret)
}

// ParseToken validates the signature and expiry and returns the embedded
// claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errs.ErrInvalidCredentials
	}
	return claims, nil
}
