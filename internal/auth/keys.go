package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF info strings. Changing one invalidates everything protected by the
// corresponding key.
const (
	cookieKeyInfo = "daily3 cookie signing"
	tokenKeyInfo  = "daily3 token store"
)

// Keys are the independent keys derived from SECRET_KEY.
type Keys struct {
	Cookie []byte // HS256 key for the u and session cookies
	Tokens []byte // XChaCha20-Poly1305 key for OAuth tokens at rest
}

// DeriveKeys expands secret into Keys with HKDF-SHA256.
func DeriveKeys(secret string) (*Keys, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: secret must be at least 16 characters")
	}

	cookie, err := deriveKey(secret, cookieKeyInfo, 32)
	if err != nil {
		return nil, err
	}
	tokens, err := deriveKey(secret, tokenKeyInfo, 32)
	if err != nil {
		return nil, err
	}
	return &Keys{Cookie: cookie, Tokens: tokens}, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("auth: deriving %q key: %w", info, err)
	}
	return key, nil
}
