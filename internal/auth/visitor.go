package auth

import (
	"net/http"

	"github.com/daily3me/daily3/internal/model"
)

// Visitor is the resolved identity of one request. It is built once by
// LoadVisitor and passed explicitly to whatever needs it.
//
// Exactly one of User and LoginURL is set.
type Visitor struct {
	// Username is the identity claimed by the session or the u cookie. It is
	// kept even when no User row exists so the u cookie is refreshed.
	Username string
	User     *model.User
	// Today is the user's post for the current UTC date, if any.
	Today    *model.Post
	LoginURL string
	Beta     bool
	Session  *Session

	// StateIssued is set when Session.State was minted for this request,
	// i.e. the incoming session carried no OAuth nonce.
	StateIssued bool
}

// Authenticated reports whether the visitor is a known user.
func (v *Visitor) Authenticated() bool {
	return v != nil && v.User != nil
}

// Login records username as the session user after a completed OAuth flow.
func (v *Visitor) Login(username string) {
	v.Username = username
	v.Session.User = username
	v.Session.Logout = false
	v.Session.State = ""
}

// Logout drops the session user. The u cookie is deleted when the response
// is finalized.
func (v *Visitor) Logout() {
	v.Session.User = ""
	v.Session.Logout = true
}

func (v *Visitor) EnableBeta() {
	v.Beta = true
	v.Session.Beta = true
	v.Session.BetaOff = false
}

// DisableBeta drops the beta flag. The b cookie is deleted when the response
// is finalized.
func (v *Visitor) DisableBeta() {
	v.Session.Beta = false
	v.Session.BetaOff = true
}

func (v *Visitor) Flash(msg string) {
	v.Session.AddFlash(msg)
}

// Flashes returns the pending messages and clears them from the session.
func (v *Visitor) Flashes() []string {
	return v.Session.PopFlashes()
}

// Directives returns the cookies to write on the response: u and b (kept or
// deleted depending on the pending flags) and the re-encoded session.
// It consumes the logout and beta-off flags, so call it once per response.
func (v *Visitor) Directives(signer *Signer, opts CookieOptions) []*http.Cookie {
	keepUser, keepBeta := true, true
	if v.Session.Logout {
		v.Session.Logout = false
		keepUser = false
	}
	if v.Session.BetaOff {
		v.Session.BetaOff = false
		keepBeta = false
	}

	var cookies []*http.Cookie

	if v.Username != "" {
		if !keepUser {
			cookies = append(cookies, opts.cookie(IdentityCookie, "", false))
		} else if value, err := signer.SignIdentity(v.Username); err == nil {
			cookies = append(cookies, opts.cookie(IdentityCookie, value, true))
		}
	}
	if v.Beta {
		cookies = append(cookies, opts.cookie(BetaCookie, "1", keepBeta))
	}

	// The session cookie has no Max-Age and lasts until the browser closes.
	if value, err := signer.EncodeSession(v.Session); err == nil {
		c := opts.cookie(SessionCookie, value, true)
		c.MaxAge = 0
		cookies = append(cookies, c)
	}

	return cookies
}
