package auth

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	key, err := DeriveSigningKey("unit-test-signing-secret")
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	return NewTokenCodec(key, ttl)
}

func TestTokenRoundTrip(t *testing.T) {
	codec := testCodec(t, time.Hour)
	actions := []string{"tweet:write", "tweet:read"}

	token, err := codec.Encode("adal", 42, actions)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if claims.Subject() != "adal" {
		t.Fatalf("expected subject adal, got %q", claims.Subject())
	}
	userID, ok := claims.UserID()
	if !ok || userID != 42 {
		t.Fatalf("expected user id 42, got %d (ok=%v)", userID, ok)
	}
	got := claims.Actions()
	sort.Strings(got)
	want := []string{"tweet:read", "tweet:write"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if diff := claims.ExpiresAt().Sub(claims.IssuedAt()); diff != time.Hour {
		t.Fatalf("expected exp-iat of 1h, got %s", diff)
	}
}

func TestTokenNilActionsEncodeEmpty(t *testing.T) {
	codec := testCodec(t, time.Hour)
	token, err := codec.Encode("adal", 42, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if actions := claims.Actions(); len(actions) != 0 {
		t.Fatalf("expected empty actions, got %v", actions)
	}
}

func TestTokenCrossKeyRejection(t *testing.T) {
	codecA := NewTokenCodec([]byte("key-a-key-a-key-a-key-a-key-a-ka"), time.Hour)
	codecB := NewTokenCodec([]byte("key-b-key-b-key-b-key-b-key-b-kb"), time.Hour)

	token, err := codecA.Encode("adal", 1, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codecB.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpiredRejection(t *testing.T) {
	codec := testCodec(t, -time.Minute)
	token, err := codec.Encode("adal", 1, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := testCodec(t, time.Hour).Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenMalformedRejection(t *testing.T) {
	codec := testCodec(t, time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Decode(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

// signRaw builds a token with arbitrary claims using the codec's key so claim
// extraction edge cases can be exercised.
func signRaw(t *testing.T, codec *TokenCodec, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestUserIDFromNumericStringClaim(t *testing.T) {
	codec := testCodec(t, time.Hour)
	claims, err := codec.Decode(signRaw(t, codec, jwt.MapClaims{"sub": "adal", "userId": "77"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	userID, ok := claims.UserID()
	if !ok || userID != 77 {
		t.Fatalf("expected 77, got %d (ok=%v)", userID, ok)
	}
}

func TestUserIDFallsBackToSubject(t *testing.T) {
	codec := testCodec(t, time.Hour)
	claims, err := codec.Decode(signRaw(t, codec, jwt.MapClaims{"sub": "88"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	userID, ok := claims.UserID()
	if !ok || userID != 88 {
		t.Fatalf("expected 88 from subject, got %d (ok=%v)", userID, ok)
	}
}

func TestUserIDNonNumericClaimDoesNotFallBack(t *testing.T) {
	// A present but unparseable userId claim means identity is absent, even
	// when the subject happens to be numeric.
	codec := testCodec(t, time.Hour)
	claims, err := codec.Decode(signRaw(t, codec, jwt.MapClaims{"sub": "99", "userId": "not-a-number"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := claims.UserID(); ok {
		t.Fatalf("expected absent user id for non-numeric userId claim")
	}
}

func TestUserIDAbsentEverywhere(t *testing.T) {
	codec := testCodec(t, time.Hour)
	claims, err := codec.Decode(signRaw(t, codec, jwt.MapClaims{"sub": "adal"}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := claims.UserID(); ok {
		t.Fatalf("expected absent user id")
	}
}

func TestActionsFilterNonStrings(t *testing.T) {
	codec := testCodec(t, time.Hour)
	claims, err := codec.Decode(signRaw(t, codec, jwt.MapClaims{
		"sub":     "42",
		"actions": []any{"tweet:read", 5, true, "tweet:write", nil},
	}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	actions := claims.Actions()
	if len(actions) != 2 || actions[0] != "tweet:read" || actions[1] != "tweet:write" {
		t.Fatalf("expected string entries only, got %v", actions)
	}
}
