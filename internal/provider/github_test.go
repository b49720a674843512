package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	serrors "github.com/pagemark/readsync/errors"
)

func newTestClient(srv *httptest.Server) *GitHubClient {
	return NewGitHubClient(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://example.com/api/callback",
		Endpoint: &oauth2.Endpoint{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
		},
		UserURL: srv.URL + "/user",
	})
}

func TestAuthorizeURLCarriesState(t *testing.T) {
	client := NewGitHubClient(Options{
		ClientID:    "client-id",
		RedirectURI: "https://example.com/api/callback",
	})

	url := client.AuthorizeURL("state-xyz")
	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "state=state-xyz")
	assert.Contains(t, url, "client_id=client-id")
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "code-abc", r.FormValue("code"))

		// GitHub answers form-encoded unless asked otherwise.
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("access_token=gh-token-1&token_type=bearer&scope=read%3Auser"))
	}))
	defer srv.Close()

	token, err := newTestClient(srv).ExchangeCode(context.Background(), "code-abc")
	require.NoError(t, err)
	assert.Equal(t, "gh-token-1", token)
}

func TestExchangeCodeProviderRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad_verification_code"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExchangeCode(context.Background(), "stale-code")
	assert.ErrorIs(t, err, serrors.ErrProviderExchange)
}

func TestExchangeCodeEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("scope=read%3Auser&token_type=bearer"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, serrors.ErrProviderExchange)
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer gh-token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":583231,"login":"octocat","avatar_url":"https://avatars.githubusercontent.com/u/583231"}`))
	}))
	defer srv.Close()

	profile, err := newTestClient(srv).FetchProfile(context.Background(), "gh-token-1")
	require.NoError(t, err)
	assert.Equal(t, "583231", profile.ExternalID)
	assert.Equal(t, "octocat", profile.Username)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/583231", profile.AvatarURL)
}

func TestFetchProfileNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchProfile(context.Background(), "revoked")
	assert.ErrorIs(t, err, serrors.ErrProviderExchange)
}

func TestFetchProfileMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchProfile(context.Background(), "gh-token")
	assert.ErrorIs(t, err, serrors.ErrProviderExchange)
}

func TestFetchProfileMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchProfile(context.Background(), "gh-token")
	assert.ErrorIs(t, err, serrors.ErrProviderExchange)
}

func TestCallbackError(t *testing.T) {
	assert.Equal(t, "user said no", CallbackError("access_denied", "user said no"))
	assert.Equal(t, "authorization failed: access denied", CallbackError("access_denied", ""))
	assert.Equal(t, "authorization failed", CallbackError("", ""))
}
