// Package reddit is a small client for the reddit OAuth API: the calls
// needed to identify a user and publish a post.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the API host for OAuth-authenticated requests.
const DefaultBaseURL = "https://oauth.reddit.com"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client calls the reddit API with an HTTP client that already carries the
// user's bearer token (see auth.RedditProvider.Client).
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithUserAgent sets the User-Agent header. Reddit rejects or throttles
// requests without a descriptive one.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{http: httpClient, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Me returns the account the token belongs to. It doubles as the token
// check before publishing.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &acct); err != nil {
		return nil, err
	}
	if acct.Name == "" {
		return nil, &APIError{Status: http.StatusOK, Code: "NO_ACCOUNT", Message: "empty account name"}
	}
	return &acct, nil
}

// NewLinks lists the newest submissions of a subreddit.
func (c *Client) NewLinks(ctx context.Context, subreddit string, limit int) ([]Link, error) {
	q := url.Values{"raw_json": {"1"}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var l listing
	if err := c.do(ctx, http.MethodGet, "/r/"+url.PathEscape(subreddit)+"/new?"+q.Encode(), nil, &l); err != nil {
		return nil, err
	}

	links := make([]Link, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		links = append(links, child.Data)
	}
	return links, nil
}

// SubmitSelf creates a text post in subreddit and returns its URL.
func (c *Client) SubmitSelf(ctx context.Context, subreddit, title, text string) (string, error) {
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"self"},
		"sr":       {subreddit},
		"title":    {title},
		"text":     {text},
	}

	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/api/submit", form, &resp); err != nil {
		return "", err
	}
	if err := resp.JSON.Errors.err(http.StatusOK); err != nil {
		return "", err
	}
	if resp.JSON.Data.URL == "" {
		return "", &APIError{Status: http.StatusOK, Code: "NO_URL", Message: "submission returned no url"}
	}
	return AbsoluteURL(resp.JSON.Data.URL), nil
}

// Comment replies to the thing with fullname parent and returns the new
// comment's URL.
func (c *Client) Comment(ctx context.Context, parent, text string) (string, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {parent},
		"text":     {text},
	}

	var resp commentResponse
	if err := c.do(ctx, http.MethodPost, "/api/comment", form, &resp); err != nil {
		return "", err
	}
	if err := resp.JSON.Errors.err(http.StatusOK); err != nil {
		return "", err
	}
	if len(resp.JSON.Data.Things) == 0 {
		return "", &APIError{Status: http.StatusOK, Code: "NO_COMMENT", Message: "comment response was empty"}
	}

	cm := resp.JSON.Data.Things[0].Data
	if cm.Permalink == "" {
		return "", &APIError{Status: http.StatusOK, Code: "NO_PERMALINK", Message: "comment has no permalink"}
	}
	return AbsoluteURL(cm.Permalink), nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("reddit: building %s %s: %w", method, path, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reddit: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("reddit: reading %s response: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrTokenExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("reddit: decoding %s response: %w", path, err)
	}
	return nil
}

func statusError(status int, data []byte) error {
	var eb errorBody
	apiErr := &APIError{Status: status}
	if json.Unmarshal(data, &eb) == nil {
		switch v := eb.Error.(type) {
		case string:
			apiErr.Code = v
		case float64:
			apiErr.Code = strconv.Itoa(int(v))
		}
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Reason
		}
	}
	if strings.EqualFold(apiErr.Code, "BAD_CAPTCHA") {
		return ErrChallengeRequired
	}
	return apiErr
}

// userAgentTransport sets User-Agent on requests that have none, which
// covers the token endpoint calls made inside golang.org/x/oauth2.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(r)
}

// NewHTTPClient returns an *http.Client with the given timeout that sends
// userAgent on every request.
func NewHTTPClient(userAgent string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: userAgent},
	}
}
