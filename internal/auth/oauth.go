package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// RedditEndpoint is reddit's OAuth2 endpoint. Reddit wants the client
// credentials in a Basic auth header on the token request.
var RedditEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.reddit.com/api/v1/authorize",
	TokenURL:  "https://www.reddit.com/api/v1/access_token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// RedditScopes are requested on every login.
var RedditScopes = []string{"identity", "submit"}

// ProviderConfig configures RedditProvider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint defaults to RedditEndpoint.
	Endpoint oauth2.Endpoint
	// HTTPClient is used for token requests. It should send a descriptive
	// User-Agent; reddit throttles generic ones.
	HTTPClient *http.Client
}

// RedditProvider wraps golang.org/x/oauth2 for reddit's authorization code
// flow with permanent (refreshable) grants.
type RedditProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

func NewRedditProvider(cfg ProviderConfig) *RedditProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = RedditEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &RedditProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       RedditScopes,
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
	}
}

// AuthURL returns the URL that starts a login. state comes back on
// /authorize and is compared with the one kept in the session.
func (p *RedditProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("duration", "permanent"))
}

// Exchange trades an authorization code for a token pair.
func (p *RedditProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	return tok, nil
}

// Refresh gets a new access token using tok's refresh token. The refresh
// token is carried over when reddit does not issue a new one.
func (p *RedditProvider) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok == nil || tok.RefreshToken == "" {
		return nil, errors.New("auth: refreshing token: no refresh token")
	}

	// A token with no access token is never Valid, so the source always
	// goes to the token endpoint.
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken}
	fresh, err := p.config.TokenSource(p.withClient(ctx), stale).Token()
	if err != nil {
		return nil, fmt.Errorf("auth: refreshing token: %w", err)
	}
	return fresh, nil
}

// Client returns an HTTP client that sends tok as a bearer token. The
// returned client reuses the provider's transport.
func (p *RedditProvider) Client(ctx context.Context, tok *oauth2.Token) *http.Client {
	client := oauth2.NewClient(p.withClient(ctx), oauth2.StaticTokenSource(tok))
	client.Timeout = p.httpClient.Timeout
	return client
}

func (p *RedditProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
