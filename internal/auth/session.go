package auth

import (
	"net/http"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the short-lived state kept in the session cookie.
type Session struct {
	User    string   `json:"user,omitempty"`
	Beta    bool     `json:"beta,omitempty"`
	Logout  bool     `json:"logout,omitempty"`   // delete the u cookie on the next response
	BetaOff bool     `json:"beta_off,omitempty"` // delete the b cookie on the next response
	State   string   `json:"state,omitempty"`    // OAuth nonce from the last login URL
	Flashes []string `json:"flashes,omitempty"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Session
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []string {
	out := slices.Clone(s.Flashes)
	s.Flashes = nil
	return out
}

// EncodeSession returns the signed value of the session cookie.
func (s *Signer) EncodeSession(sess *Session) (string, error) {
	c := sessionClaims{
		RegisteredClaims: s.registered("", audienceSession),
		Session:          *sess,
	}
	return s.sign(&c)
}

// DecodeSession verifies a session cookie value.
func (s *Signer) DecodeSession(value string) (*Session, error) {
	var c sessionClaims
	if err := s.parse(value, audienceSession, &c); err != nil {
		return nil, err
	}
	sess := c.Session
	return &sess, nil
}

// sessionFromRequest returns the request's session, or an empty one when the
// cookie is absent or does not verify.
func (s *Signer) sessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}
	sess, err := s.DecodeSession(cookie.Value)
	if err != nil {
		return &Session{}
	}
	return sess
}
