package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/desertthunder/mediaranker/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIBase = "https://api.github.com"

// Assertion is the identity a provider vouches for after a successful authorization.
type Assertion struct {
	Provider string
	UID      string
	Username string
	Name     string
	Email    string
}

// Provider performs the authorization code flow for one OAuth identity provider.
type Provider interface {
	Name() string                                                    // Name is the {provider} segment of the callback route
	AuthCodeURL(state string) string                                 // AuthCodeURL is where the login route redirects the browser
	Assert(ctx context.Context, r *http.Request) (*Assertion, error) // Assert exchanges the callback's code for an identity
}

// GitHubProvider implements [Provider] for GitHub OAuth apps.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// GitHubOption customizes a [GitHubProvider].
type GitHubOption func(*GitHubProvider)

// WithGitHubEndpoints points the provider at alternate authorization, token and API URLs (GitHub Enterprise, tests).
func WithGitHubEndpoints(authURL, tokenURL, apiBase string) GitHubOption {
	return func(p *GitHubProvider) {
		p.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		p.apiBase = apiBase
	}
}

// NewGitHubProvider creates a [GitHubProvider] from client credentials.
func NewGitHubProvider(creds shared.OAuthConfig, opts ...GitHubOption) (*GitHubProvider, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("%w: github client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	p := &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: githubAPIBase,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements [Provider].
func (p *GitHubProvider) Name() string { return "github" }

// AuthCodeURL implements [Provider].
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Assert implements [Provider].
//
// The caller is responsible for validating the state parameter before calling Assert.
func (p *GitHubProvider) Assert(ctx context.Context, r *http.Request) (*Assertion, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: profile request returned %d: %s", shared.ErrAuthFailed, resp.StatusCode, body)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode profile: %v", shared.ErrAuthFailed, err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: profile has no id", shared.ErrAuthFailed)
	}

	return &Assertion{
		Provider: p.Name(),
		UID:      strconv.FormatInt(user.ID, 10),
		Username: user.Login,
		Name:     user.Name,
		Email:    user.Email,
	}, nil
}
