package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
)

// UserFinder looks up users by key.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// DailyPostFinder looks up a user's post for a calendar date.
type DailyPostFinder interface {
	GetForDate(ctx context.Context, username, date string) (*model.Post, error)
}

// LoginURLBuilder builds the authorization URL shown to anonymous visitors.
type LoginURLBuilder interface {
	AuthURL(state string) string
}

// Resolver turns a request and its session into a Visitor.
type Resolver struct {
	signer *Signer
	users  UserFinder
	posts  DailyPostFinder
	login  LoginURLBuilder
	logger *slog.Logger
	now    func() time.Time
}

func NewResolver(signer *Signer, users UserFinder, posts DailyPostFinder, login LoginURLBuilder, logger *slog.Logger) *Resolver {
	return &Resolver{
		signer: signer,
		users:  users,
		posts:  posts,
		login:  login,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve builds the Visitor for r. sess is modified in place: the resolved
// username and beta flag are written back to it.
//
// Lookup failures other than "not found" are logged and the visitor is
// treated as anonymous.
func (res *Resolver) Resolve(r *http.Request, sess *Session) *Visitor {
	ctx := r.Context()

	username := sess.User
	if username == "" {
		username = res.signer.identityFromRequest(r)
	}
	beta := sess.Beta
	if !beta {
		if c, err := r.Cookie(BetaCookie); err == nil && c.Value != "" {
			beta = true
		}
	}

	sess.User = username
	sess.Beta = beta

	if sess.Logout {
		sess.User = ""
		username = ""
	}
	if sess.BetaOff {
		sess.Beta = false
		beta = false
	}

	v := &Visitor{Username: username, Beta: beta, Session: sess}

	if username != "" {
		user, err := res.users.GetByUsername(ctx, username)
		switch {
		case err == nil:
			v.User = user
		case errors.Is(err, apperror.ErrNotFound):
			res.logger.Debug("identity has no user record", slog.String("username", username))
		default:
			res.logger.Error("loading visitor", slog.String("username", username), slog.Any("error", err))
		}
	}

	if v.User != nil {
		today, err := res.posts.GetForDate(ctx, v.User.Username, model.DateOf(res.now()))
		switch {
		case err == nil:
			v.Today = today
		case errors.Is(err, apperror.ErrNotFound):
		default:
			res.logger.Error("loading today's post", slog.String("username", username), slog.Any("error", err))
		}
		return v
	}

	// Keep one nonce per browser session so several open tabs share it.
	if sess.State == "" {
		sess.State = xid.New().String()
		v.StateIssued = true
	}
	v.LoginURL = res.login.AuthURL(sess.State)
	return v
}
