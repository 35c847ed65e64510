package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CalendarEventsScope lets the practice mirror seances into Google Calendar.
const CalendarEventsScope = "https://www.googleapis.com/auth/calendar.events"

// HTTPClient is the subset of *http.Client used to fetch user info.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserInfo is the identity returned by the provider.
type UserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// OAuthProvider holds the configuration for the Google identity provider.
type OAuthProvider struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
	RedirectURL  string

	// HTTPClient fetches user info. When nil, the oauth2 client bound to
	// the exchanged token is used.
	HTTPClient HTTPClient

	oauthConfig *oauth2.Config
}

// NewGoogleProvider returns an OAuth2 configuration for Google with the
// calendar scope requested alongside the identity scopes.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	p := &OAuthProvider{
		Name:         "google",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      google.Endpoint.AuthURL,
		TokenURL:     google.Endpoint.TokenURL,
		UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		Scopes:       []string{"openid", "email", "profile", CalendarEventsScope},
		RedirectURL:  redirectURL,
	}
	p.oauthConfig = p.buildConfig()
	return p
}

func (p *OAuthProvider) buildConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
		},
		Scopes:      p.Scopes,
		RedirectURL: p.RedirectURL,
	}
}

// AuthorizationURL returns the consent URL. Offline access is requested so
// the calendar mirror keeps working after the access token expires.
func (p *OAuthProvider) AuthorizationURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// ExchangeCode exchanges an authorization code for a token and fetches the
// user's identity with it.
func (p *OAuthProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, *oauth2.Token, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}

	var client HTTPClient = p.oauthConfig.Client(ctx, token)
	if p.HTTPClient != nil {
		client = p.HTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: user info returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.ExchangeCode: reading user info: %w", err)
	}

	info, err := parseGoogleUserInfo(body)
	if err != nil {
		return nil, nil, err
	}
	return info, token, nil
}

// TokenSource returns a source that refreshes tok when it expires.
func (p *OAuthProvider) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return p.oauthConfig.TokenSource(ctx, tok)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func parseGoogleUserInfo(data []byte) (*UserInfo, error) {
	var info googleUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("auth.parseGoogleUserInfo: %w", err)
	}

	return &UserInfo{
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}
