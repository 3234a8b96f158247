package yahoo

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"
	// OutOfBand makes Yahoo show the authorization code to the user instead of redirecting.
	OutOfBand = "oob"
)

var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://api.login.yahoo.com/oauth2/request_auth",
	TokenURL: "https://api.login.yahoo.com/oauth2/get_token",
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	BaseURL      string
	Endpoint     oauth2.Endpoint
	Timeout      time.Duration
}

type Client struct {
	oauth   *oauth2.Config
	baseURL string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = Endpoint
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = OutOfBand
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"fspt-r"},
		},
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
	}
}

// AuthCodeURL is the consent page the user visits to obtain a code.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades a pasted authorization code for an authenticated HTTP client.
func (c *Client) Exchange(ctx context.Context, code string) (*http.Client, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: c.timeout})
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return c.oauth.Client(ctx, token), nil
}

func (c *Client) Get(ctx context.Context, httpClient *http.Client, endpoint string, result any) error {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := xml.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}
