package handler

// RESPONSE HELPERS:
// Pages, fragments and plain-text replies all go through here so every
// handler maps domain errors the same way:
//
//	apperror.ErrNotFound     → 404 page
//	apperror.ErrUnauthorized → redirect home
//	anything else            → 500 page (details only in the log)

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/auth"
)

func variant(v *auth.Visitor, name string) string {
	if v.Beta {
		return name + betaSuffix
	}
	return name
}

// fill completes data with the per-request fields. It pops the flashes,
// so call it once per response.
func (h *Handler) fill(v *auth.Visitor, data PageData) PageData {
	data.Visitor = v
	data.Beta = v.Beta
	data.GAID = h.gaID
	data.Flashes = v.Flashes()
	return data
}

func (h *Handler) page(w http.ResponseWriter, v *auth.Visitor, status int, name string, data PageData) {
	h.render.Page(w, status, name, h.fill(v, data))
}

func (h *Handler) fragment(w http.ResponseWriter, v *auth.Visitor, status int, name string, data PageData) {
	data.PanelFlashes = true
	h.render.Fragment(w, status, name, h.fill(v, data))
}

// writeError renders the error page matching err.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, v *auth.Visitor, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		h.page(w, v, http.StatusNotFound, "404", PageData{})
		return
	case errors.Is(err, apperror.ErrUnauthorized):
		redirectHome(w, r)
		return
	}

	h.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	h.page(w, v, http.StatusInternalServerError, "500", PageData{})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, auth.VisitorFromContext(r.Context()), http.StatusNotFound, "404", PageData{})
}
