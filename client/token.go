package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsTokenExpired decodes the token payload without verifying the signature
// and reports whether its expiry claim has passed. Anything that cannot be
// decoded into claims with a numeric exp counts as expired.
//
// The check is advisory: it only exists to skip a doomed network round trip
// when the token is obviously stale. The server remains the authority.
func IsTokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}
