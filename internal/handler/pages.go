package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/auth"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/service"
)

// Home renders the latest posts.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())

	posts, err := h.feed.Home(r.Context(), v.User)
	if err != nil {
		h.writeError(w, r, v, err)
		return
	}
	h.page(w, v, http.StatusOK, variant(v, "index"), PageData{Posts: posts, PanelFlashes: true})
}

// Me renders the visitor's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	if !v.Authenticated() {
		redirectHome(w, r)
		return
	}
	h.profile(w, r, v, v.User.Username)
}

// Profile renders /u/{username}.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	h.profile(w, r, v, chi.URLParam(r, "username"))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, v *auth.Visitor, username string) {
	profile, posts, err := h.feed.Profile(r.Context(), username, v.User)
	if err != nil {
		h.writeError(w, r, v, err)
		return
	}
	h.page(w, v, http.StatusOK, variant(v, "user_profile"), PageData{Profile: profile, Posts: posts})
}

// Favorites renders the visitor's favorite posts. There is only a beta
// layout for this page.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	if !v.Authenticated() {
		redirectHome(w, r)
		return
	}

	posts, err := h.feed.Favorites(r.Context(), v.User)
	if err != nil {
		h.writeError(w, r, v, err)
		return
	}
	h.page(w, v, http.StatusOK, "favorites"+betaSuffix, PageData{Posts: posts})
}

// PostDaily3 accepts the user panel form and answers with the re-rendered
// panel. Anonymous visitors get the panel with the login link.
func (h *Handler) PostDaily3(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	panel := variant(v, "user_panel")

	if !v.Authenticated() {
		h.fragment(w, v, http.StatusOK, panel, PageData{})
		return
	}

	in := service.PostInput{
		Item1: r.PostFormValue("item1"),
		Item2: r.PostFormValue("item2"),
		Item3: r.PostFormValue("item3"),
	}

	post, result, err := h.posts.Create(r.Context(), v.User, in)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			v.Flash(appErr.Message)
			h.fragment(w, v, http.StatusBadRequest, panel, PageData{})
			return
		}
		h.writeError(w, r, v, err)
		return
	}

	if result.Message != "" {
		v.Flash(result.Message)
	}
	v.Today = post
	h.fragment(w, v, http.StatusOK, panel, PageData{})
}

// Favorite toggles a favorite and answers in plain text.
func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	v := auth.VisitorFromContext(r.Context())
	postID := chi.URLParam(r, "post_id")

	if !v.Authenticated() {
		writeText(w, http.StatusOK, fmt.Sprintf("User not logged in. Cannot favorite %s.", postID))
		return
	}

	action, err := h.favorites.Toggle(r.Context(), v.User, postID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		writeText(w, http.StatusNotFound, fmt.Sprintf("Post %s not found.", postID))
		return
	case errors.Is(err, apperror.ErrValidation):
		writeText(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("toggling favorite",
			slog.String("postID", postID),
			slog.String("username", v.User.Username),
			slog.Any("error", err),
		)
		writeText(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if action == model.FavoriteRemoved {
		writeText(w, http.StatusOK, fmt.Sprintf("Removed favorite %s for user %s", postID, v.User.Username))
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Added  favorite %s for user %s", postID, v.User.Username))
}

// Warmup answers the platform warmup probe once the datastore responds.
func (h *Handler) Warmup(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Error("warmup ping failed", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
