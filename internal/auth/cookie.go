package auth

import (
	"fmt"
	"net/http"
	"time"
)

// Cookie names shared with the templates and handlers.
const (
	IdentityCookie = "u"
	BetaCookie     = "b"
	SessionCookie  = "session"
)

// SignIdentity returns the value of the u cookie for username.
func (s *Signer) SignIdentity(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("auth: signing identity: empty username")
	}
	c := s.registered(username, audienceIdentity)
	return s.sign(&c)
}

// VerifyIdentity returns the username carried by a u cookie value.
func (s *Signer) VerifyIdentity(value string) (string, error) {
	var c identityClaims
	if err := s.parse(value, audienceIdentity, &c); err != nil {
		return "", err
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}

// identityFromRequest reads and verifies the u cookie. Any problem yields "".
func (s *Signer) identityFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(IdentityCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	username, err := s.VerifyIdentity(cookie.Value)
	if err != nil {
		return ""
	}
	return username
}

// CookieOptions control the attributes of cookies written on responses.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

func (o CookieOptions) cookie(name, value string, keep bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if keep {
		c.MaxAge = int(o.MaxAge / time.Second)
	} else {
		// Negative MaxAge is sent as "Max-Age=0", which deletes the cookie.
		c.Value = ""
		c.MaxAge = -1
	}
	return c
}
