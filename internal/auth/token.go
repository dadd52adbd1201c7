package auth

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every way a bearer token can be unusable: malformed
// structure, signature mismatch, or expiry. Callers must not learn which.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenCodec encodes and decodes signed bearer tokens. Tokens are
// self-contained; validity is signature integrity plus expiry, nothing else.
type TokenCodec struct {
	key []byte
	ttl time.Duration
}

// NewTokenCodec constructs a codec bound to the given HMAC key and token TTL.
func NewTokenCodec(key []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{key: key, ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode mints a signed token carrying the subject, numeric user id and the
// permitted-action list. A nil action list is encoded as an empty one.
func (c *TokenCodec) Encode(subject string, userID int64, actions []string) (string, error) {
	if actions == nil {
		actions = []string{}
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"userId":  userID,
		"actions": actions,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(c.ttl)),
		"jti":     uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claim set. Every
// parse anomaly normalizes to ErrInvalidToken.
func (c *TokenCodec) Decode(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.key, nil
	}, jwt.WithJSONNumber())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	raw, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return Claims{raw: raw}, nil
}

// Claims wraps a verified claim set and applies the extraction conventions
// that accumulated across token issuers.
type Claims struct {
	raw jwt.MapClaims
}

// Subject returns the sub claim, or "" when absent.
func (cl Claims) Subject() string {
	sub, _ := cl.raw["sub"].(string)
	return sub
}

// UserID resolves the numeric user id. The userId claim wins when it is a
// number or a numeric string; otherwise the subject is parsed as an integer.
// Returns false when no convention yields a valid id.
func (cl Claims) UserID() (int64, bool) {
	switch value := cl.raw["userId"].(type) {
	case json.Number:
		if id, err := value.Int64(); err == nil {
			return id, true
		}
		return 0, false
	case float64:
		return int64(value), true
	case string:
		if value != "" {
			if id, err := strconv.ParseInt(value, 10, 64); err == nil {
				return id, true
			}
			return 0, false
		}
	}
	if sub := cl.Subject(); sub != "" {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// Actions returns the permitted-action list. Non-string entries are dropped;
// an absent claim yields an empty list.
func (cl Claims) Actions() []string {
	entries, ok := cl.raw["actions"].([]any)
	if !ok {
		return []string{}
	}
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if action, ok := entry.(string); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// IssuedAt returns the iat claim time, zero when absent.
func (cl Claims) IssuedAt() time.Time {
	return numericDate(cl.raw["iat"])
}

// ExpiresAt returns the exp claim time, zero when absent.
func (cl Claims) ExpiresAt() time.Time {
	return numericDate(cl.raw["exp"])
}

func numericDate(value any) time.Time {
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return time.Unix(int64(f), 0)
		}
	case float64:
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}
