// Package auth implements the identity core: signing key derivation, bearer
// token encode/decode, request-scoped identity, and credential verification.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingSecret indicates the signing secret was not configured. It is
// fatal at startup; the server must not accept traffic without a key.
var ErrMissingSecret = errors.New("auth: signing secret must be configured")

var base64Charset = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// DeriveSigningKey turns the configured secret into HMAC key material.
// Operators may supply either a high-entropy Base64 value, which is decoded
// to raw bytes, or a plain passphrase, whose UTF-8 bytes are used directly.
// Deterministic: the same secret always yields the same key.
func DeriveSigningKey(secret string) ([]byte, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, ErrMissingSecret
	}
	if looksLikeBase64(trimmed) {
		decoded, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("auth: decode base64 secret: %w", err)
		}
		return decoded, nil
	}
	return []byte(trimmed), nil
}

func looksLikeBase64(value string) bool {
	return len(value)%4 == 0 && base64Charset.MatchString(value)
}
