package jwt

import (
	"encoding/base64"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func es256kToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"at+jwt","alg":"ES256K"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".c2ln"
}

func TestParse(t *testing.T) {
	header, claims, err := Parse(es256kToken(`{"scope":"com.atproto.access","sub":"did:plc:bot","iat":1700000000,"exp":1700007200}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header.Algorithm != "ES256K" || header.Type != "at+jwt" {
		t.Fatalf("unexpected header %+v", header)
	}
	if claims.Subject != "did:plc:bot" || claims.Scope != "com.atproto.access" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != 1700007200 {
		t.Fatalf("unexpected exp %v", claims.ExpiresAt)
	}

	for _, bad := range []string{"", "a.b", "!!.e30.x", es256kToken("not json")} {
		if _, _, err := Parse(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestParseSignedToken(t *testing.T) {
	exp := time.Unix(1700007200, 0)
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		Scope: "com.atproto.access",
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "did:plc:bot",
			ExpiresAt: gojwt.NewNumericDate(exp),
		},
	}).SignedString([]byte("pds-secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	header, claims, err := Parse(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header.Algorithm != "HS256" {
		t.Fatalf("unexpected alg %s", header.Algorithm)
	}
	if !claims.ExpiresWithin(time.Minute, exp.Add(-30*time.Second)) {
		t.Fatalf("token should be about to expire")
	}
}

func TestExpiresWithin(t *testing.T) {
	now := time.Unix(1700000000, 0)
	claims := Claims{RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(now.Add(time.Minute))}}

	if claims.ExpiresWithin(30*time.Second, now) {
		t.Fatalf("token should still be fresh")
	}
	if !claims.ExpiresWithin(2*time.Minute, now) {
		t.Fatalf("token should be about to expire")
	}
	if (Claims{}).ExpiresWithin(time.Hour, now) {
		t.Fatalf("token without exp never expires")
	}
}
