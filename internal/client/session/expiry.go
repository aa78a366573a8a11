package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var expirationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ExpiresAt reports when the session's token expires, for display only.
// It reads the backend's expiration field and, failing that, the unverified
// exp claim of the token. Nothing enforces it: an expired session is
// discovered when the backend answers 401.
func ExpiresAt(s Snapshot) (time.Time, bool) {
	if s.User == nil {
		return time.Time{}, false
	}
	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, s.User.Expiration); err == nil {
			return t, true
		}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
