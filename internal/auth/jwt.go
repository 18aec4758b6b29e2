// Package auth resolves who is making a request.
//
// Two signed cookies carry identity between requests:
//
//	u       — long-lived (31 days) HS256 JWT whose subject is the reddit username
//	session — per-browser-session HS256 JWT with the user, beta flag, pending
//	          logout/beta-off flags, OAuth state nonce and flash messages
//
// Both are signed with a key derived from SECRET_KEY (see keys.go). A cookie
// that fails verification for any reason is ignored: the visitor is treated
// as anonymous, never as an error.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: claims, e.g. {"sub":"spez","aud":["u"],"exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, cookieKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "daily3"

// Audiences keep a session token from being accepted as an identity cookie
// and vice versa, even though both share one key.
const (
	audienceIdentity = "u"
	audienceSession  = "session"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

// Signer creates and verifies the HS256 tokens stored in cookies.
type Signer struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer. key must be at least 16 bytes; use
// DeriveKeys to get one from SECRET_KEY.
func NewSigner(key []byte, maxAge time.Duration) (*Signer, error) {
	if len(key) < 16 {
		return nil, errors.New("auth: signing key must be at least 16 bytes")
	}
	if maxAge <= 0 {
		return nil, errors.New("auth: cookie max age must be positive")
	}
	return &Signer{key: key, maxAge: maxAge, now: time.Now}, nil
}

func (s *Signer) registered(subject, audience string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}
}

func (s *Signer) sign(c jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// parse verifies tokenStr into c. Only HS256 is accepted; a token signed
// with "none" or an asymmetric algorithm is rejected before the key is used.
func (s *Signer) parse(tokenStr, audience string, c jwt.Claims) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// identityClaims is the payload of the u cookie; the username is the subject.
type identityClaims struct {
	jwt.RegisteredClaims
}
