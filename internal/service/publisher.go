package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/reddit"
)

// User-facing messages shown as flashes.
const (
	UnknownLoginErrorText = "Unknown error authenticating with reddit. Please try again after some time."
	UnknownPostErrorText  = "Unknown error posting to reddit. Your post was *not* posted on /r/MyDaily3."
	CaptchaErrorText      = "Reddit requires a captcha challenge before you can post because you have low karma. " +
		"We can't handle captcha now. Your post was *not* posted on /r/MyDaily3."
)

// Publish modes.
const (
	ModeThread = "thread"
	ModeNew    = "new"
)

// newLinksLimit is how far down /new the stickied thread is searched for.
const newLinksLimit = 25

// RedditAPI is the part of *reddit.Client the publisher needs.
type RedditAPI interface {
	Me(ctx context.Context) (*reddit.Account, error)
	NewLinks(ctx context.Context, subreddit string, limit int) ([]reddit.Link, error)
	SubmitSelf(ctx context.Context, subreddit, title, text string) (string, error)
	Comment(ctx context.Context, parent, text string) (string, error)
}

// APIFactory returns a RedditAPI that authenticates with tok.
type APIFactory func(ctx context.Context, tok *oauth2.Token) RedditAPI

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

type PublishStatus int

const (
	Published PublishStatus = iota + 1
	NoThread
	AuthFailed
	ChallengeRequired
	Failed
)

func (s PublishStatus) String() string {
	switch s {
	case Published:
		return "published"
	case NoThread:
		return "no_thread"
	case AuthFailed:
		return "auth_failed"
	case ChallengeRequired:
		return "challenge_required"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// PublishResult is the outcome of one publish attempt.
type PublishResult struct {
	Status PublishStatus
	// Link is the URL of the reddit submission or comment when Published.
	Link string
	// Message is the flash for the user. Empty for Published and NoThread.
	Message string
	// Code identifies the failure point in logs (E001..E004, E101..E104).
	Code string
	// RefreshedToken is set when the access token was refreshed on the way.
	RefreshedToken *oauth2.Token
}

// PostBody renders the three items as a markdown list.
func PostBody(items [3]string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(" * ")
		b.WriteString(item)
	}
	return b.String()
}

// Publisher posts a Daily3 to reddit, either as a comment on the
// subreddit's stickied thread or as a new self post.
type Publisher struct {
	newAPI    APIFactory
	refresher TokenRefresher
	subreddit string
	mode      string
	logger    *slog.Logger
}

func NewPublisher(newAPI APIFactory, refresher TokenRefresher, subreddit, mode string, logger *slog.Logger) (*Publisher, error) {
	if mode != ModeThread && mode != ModeNew {
		return nil, fmt.Errorf("service/publisher: unknown mode %q", mode)
	}
	if subreddit == "" {
		return nil, errors.New("service/publisher: subreddit must not be empty")
	}
	return &Publisher{
		newAPI:    newAPI,
		refresher: refresher,
		subreddit: subreddit,
		mode:      mode,
		logger:    logger,
	}, nil
}

// failure codes per mode, in order: refresh failed, other auth error,
// captcha, publish error.
var failureCodes = map[string][4]string{
	ModeNew:    {"E001", "E002", "E003", "E004"},
	ModeThread: {"E101", "E102", "E103", "E104"},
}

// Publish never returns an error; every outcome is a PublishResult.
func (p *Publisher) Publish(ctx context.Context, username string, tok *oauth2.Token, post *model.Post) PublishResult {
	codes := failureCodes[p.mode]
	log := p.logger.With(slog.String("username", username), slog.String("mode", p.mode))

	api, refreshed, res, ok := p.authenticate(ctx, tok, codes, log)
	if !ok {
		return res
	}

	body := PostBody(post.Items())
	var (
		link string
		err  error
	)
	if p.mode == ModeNew {
		link, err = api.SubmitSelf(ctx, p.subreddit, post.Item1, body)
	} else {
		link, err = p.commentOnThread(ctx, api, body)
	}

	result := PublishResult{RefreshedToken: refreshed}
	switch {
	case err == nil && link == "":
		log.Info("no stickied thread to post to", slog.String("subreddit", p.subreddit))
		result.Status = NoThread
	case err == nil:
		log.Info("post published", slog.String("link", link))
		result.Status = Published
		result.Link = link
	case errors.Is(err, reddit.ErrChallengeRequired):
		log.Error("captcha required", slog.String("code", codes[2]))
		result.Status = ChallengeRequired
		result.Code = codes[2]
		result.Message = CaptchaErrorText
	default:
		log.Error("publishing to reddit", slog.String("code", codes[3]), slog.Any("error", err))
		result.Status = Failed
		result.Code = codes[3]
		result.Message = UnknownPostErrorText
	}
	return result
}

// authenticate verifies tok, refreshing it once on expiry. ok is false when
// res holds the final (AuthFailed) result.
func (p *Publisher) authenticate(ctx context.Context, tok *oauth2.Token, codes [4]string, log *slog.Logger) (api RedditAPI, refreshed *oauth2.Token, res PublishResult, ok bool) {
	authFailed := func(code string, err error) PublishResult {
		log.Error("authenticating with reddit", slog.String("code", code), slog.Any("error", err))
		return PublishResult{Status: AuthFailed, Code: code, Message: UnknownPostErrorText}
	}

	if tok == nil {
		return nil, nil, authFailed(codes[1], errors.New("no stored tokens")), false
	}

	api = p.newAPI(ctx, tok)
	_, err := api.Me(ctx)
	if err == nil {
		return api, nil, PublishResult{}, true
	}
	if !errors.Is(err, reddit.ErrTokenExpired) {
		return nil, nil, authFailed(codes[1], err), false
	}

	log.Debug("access token expired, refreshing")
	fresh, err := p.refresher.Refresh(ctx, tok)
	if err != nil {
		return nil, nil, authFailed(codes[0], err), false
	}

	api = p.newAPI(ctx, fresh)
	if _, err := api.Me(ctx); err != nil {
		return nil, nil, authFailed(codes[0], err), false
	}
	return api, fresh, PublishResult{}, true
}

// commentOnThread replies to the first stickied link in /new. An empty link
// and nil error mean there was no stickied thread.
func (p *Publisher) commentOnThread(ctx context.Context, api RedditAPI, body string) (string, error) {
	links, err := api.NewLinks(ctx, p.subreddit, newLinksLimit)
	if err != nil {
		return "", err
	}
	for _, l := range links {
		if !l.Stickied {
			continue
		}
		parent := l.Name
		if parent == "" {
			parent = "t3_" + l.ID
		}
		return api.Comment(ctx, parent, body)
	}
	return "", nil
}
