package handler

import (
	"log/slog"
	"net/http"

	"github.com/daily3me/daily3/internal/auth"
	"github.com/daily3me/daily3/internal/service"
)

// loginErrorCode tags log lines for failed logins.
const loginErrorCode = "E201"

// Authorize is the OAuth redirect target. Every outcome ends in a redirect
// home; failures are reported with a flash.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		v.Flash(e)
		redirectHome(w, r)
		return
	}

	code := q.Get("code")
	if code == "" {
		redirectHome(w, r)
		return
	}

	// A nonce minted on this very request cannot have been sent to reddit,
	// so only a nonce the browser brought along is compared.
	if want := v.Session.State; want != "" && !v.StateIssued && q.Get("state") != want {
		h.logger.Error("login state mismatch", slog.String("code", loginErrorCode))
		v.Flash(service.UnknownLoginErrorText)
		redirectHome(w, r)
		return
	}

	user, err := h.logins.CompleteLogin(r.Context(), code)
	if err != nil {
		h.logger.Error("completing login",
			slog.String("code", loginErrorCode),
			slog.Any("error", err),
		)
		v.Flash(service.UnknownLoginErrorText)
		redirectHome(w, r)
		return
	}

	v.Login(user.Username)
	h.logger.Info("user logged in", slog.String("username", user.Username))
	redirectHome(w, r)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.VisitorFromContext(r.Context()).Logout()
	redirectHome(w, r)
}

func (h *Handler) BetaOn(w http.ResponseWriter, r *http.Request) {
	auth.VisitorFromContext(r.Context()).EnableBeta()
	redirectHome(w, r)
}

func (h *Handler) BetaOff(w http.ResponseWriter, r *http.Request) {
	auth.VisitorFromContext(r.Context()).DisableBeta()
	redirectHome(w, r)
}
