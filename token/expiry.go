package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Expiry decodes the exp claim of a JWT without verifying its signature.
// Verification is the backend's job; the client only needs to know when to refresh.
func Expiry(rawToken string) (time.Time, error) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, errors.ErrInvalidToken
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "parse token: %v", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "exp claim: %v", err)
	}
	if exp == nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidToken, "token missing exp claim")
	}
	return exp.Time, nil
}

// IsExpired reports whether the token's exp claim is in the past. A token
// that cannot be decoded counts as expired.
func IsExpired(rawToken string) bool {
	exp, err := Expiry(rawToken)
	if err != nil {
		return true
	}
	return !NowTimeFunc().Before(exp)
}
