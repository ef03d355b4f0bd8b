package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type Header struct {
	Type      string
	Algorithm string
}

// Claims is the subset of the PDS session token claims the client reads.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	gojwt.RegisteredClaims
}

// Parse decodes the header and claims of jwt. The signature belongs to the
// PDS and is not checked, so algorithms golang-jwt does not register
// (ES256K) are accepted.
func Parse(jwt string) (*Header, *Claims, error) {

	var claims Claims
	token, _, err := gojwt.NewParser().ParseUnverified(jwt, &claims)
	if err != nil && !errors.Is(err, gojwt.ErrTokenUnverifiable) {
		return nil, nil, err
	}

	header := Header{}
	header.Type, _ = token.Header["typ"].(string)
	header.Algorithm, _ = token.Header["alg"].(string)

	return &header, &claims, nil
}

// ExpiresWithin reports whether the token is expired or will be within d.
// Tokens without exp never expire.
func (c Claims) ExpiresWithin(d time.Duration, now time.Time) bool {
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now.Add(d))
}
