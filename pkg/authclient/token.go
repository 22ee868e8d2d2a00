package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var unverified = jwt.NewParser()

// Expiration reads the exp claim without checking the signature. The result
// only drives proactive refresh; the server stays the judge of validity.
func Expiration(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := unverified.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, errors.Wrap(err, "decode token")
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether token is past its exp at now. Tokens that cannot
// be decoded count as expired, and exp itself is already expired.
func IsExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	exp, err := Expiration(token)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
