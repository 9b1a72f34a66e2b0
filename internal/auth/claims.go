package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultAccessTTL applies when config leaves the token lifetime unset.
const defaultAccessTTL = 15 * time.Minute

// Claims is the payload of a Haven access token. Subject carries the
// user ID; handlers take the caller identity from there rather than a
// database lookup, which keeps authenticated requests stateless.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateAccessToken mints a short-lived HS256 token for user.
func GenerateAccessToken(user *User, secret string, ttlMinutes int) (string, error) {
	ttl := defaultAccessTTL
	if ttlMinutes > 0 {
		ttl = time.Duration(ttlMinutes) * time.Minute
	}

	issued := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Username: user.Username,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry, rejecting anything that is
// not HS256 or that lacks a subject. All failures wrap ErrTokenInvalid
// so callers can map them to a single 401.
func ParseToken(tokenString, secret string) (*Claims, error) {
	keyFn := func(_ *jwt.Token) (any, error) { return []byte(secret), nil }

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFn,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	switch {
	case !ok || !token.Valid:
		return nil, ErrTokenInvalid
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}

	return claims, nil
}
