package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	githuboauth2 "golang.org/x/oauth2/github"

	serrors "github.com/pagemark/readsync/errors"
)

const requestTimeout = 10 * time.Second

// Profile is the identity returned by GitHub after a successful exchange.
type Profile struct {
	ExternalID string
	Username   string
	AvatarURL  string
}

// GitHubClient performs the two browser-side exchanges of the sign-in flow:
// authorization code to provider token, provider token to profile. It holds
// no state beyond configuration. Neither call is ever retried; a GitHub
// authorization code is single-use, so the caller treats any failure as
// terminal for that attempt.
type GitHubClient struct {
	oauth      oauth2.Config
	userURL    string
	httpClient *http.Client
}

// Options configures a GitHubClient.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// UserURL overrides the GitHub user endpoint, for tests.
	UserURL string
	// Endpoint overrides the OAuth2 endpoints, for tests.
	Endpoint *oauth2.Endpoint
}

// NewGitHubClient creates a provider client from OAuth application
// credentials.
func NewGitHubClient(opts Options) *GitHubClient {
	endpoint := githuboauth2.Endpoint
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}

	userURL := opts.UserURL
	if userURL == "" {
		userURL = "https://api.github.com/user"
	}

	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{"read:user", "user:email"}
	}

	return &GitHubClient{
		oauth: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		userURL:    userURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// AuthorizeURL builds the GitHub authorization URL carrying the given state.
func (c *GitHubClient) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode swaps an authorization code for a provider access token. Any
// transport error, non-success status or unusable payload fails closed with
// ErrProviderExchange.
func (c *GitHubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange: %v", serrors.ErrProviderExchange, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", serrors.ErrProviderExchange)
	}

	return token.AccessToken, nil
}

// FetchProfile retrieves the signed-in user's profile with a provider access
// token. GitHub returns the numeric account id, login and avatar URL.
func (c *GitHubClient) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build profile request: %v", serrors.ErrProviderExchange, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "readsync")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request: %v", serrors.ErrProviderExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: profile request: status %d, body: %s",
			serrors.ErrProviderExchange, resp.StatusCode, string(body))
	}

	var raw struct {
		ID        json.Number `json:"id"`
		Login     string      `json:"login"`
		AvatarURL string      `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", serrors.ErrProviderExchange, err)
	}
	if raw.ID.String() == "" {
		return nil, fmt.Errorf("%w: profile response missing id", serrors.ErrProviderExchange)
	}

	return &Profile{
		ExternalID: raw.ID.String(),
		Username:   raw.Login,
		AvatarURL:  raw.AvatarURL,
	}, nil
}

// CallbackError maps the error query parameters GitHub appends to a failed
// redirect into a human-readable message for the terminal page.
func CallbackError(errCode, errDescription string) string {
	if errDescription != "" {
		return errDescription
	}
	if errCode != "" {
		return fmt.Sprintf("authorization failed: %s", strings.ReplaceAll(errCode, "_", " "))
	}
	return "authorization failed"
}
