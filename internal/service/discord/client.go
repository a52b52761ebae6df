// internal/service/discord/client.go
package discord

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	xerrors "realm-gateway/internal/pkg/errors"
)

// DefaultAPIBaseURL is Discord's REST API root.
const DefaultAPIBaseURL = "https://discord.com/api"

// fallbackState is only handed out when the CSPRNG fails, which is logged
// as degraded operation.
const fallbackState = "fallback-state"

// Profile is Discord's users/@me payload, normalized to the fields the
// gateway stores.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar"`
	Verified      bool   `json:"verified"`
}

// Config for the exchange client. Endpoint, APIBaseURL and HTTPClient
// default to production Discord and are only overridden by tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	Endpoint   oauth2.Endpoint
	APIBaseURL string
	HTTPClient *http.Client
}

// Client exchanges authorization codes for tokens and fetches the
// provider profile. It performs no retries; retry policy is a caller
// concern.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Discord
	}
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"identify", "email"},
		},
		apiBaseURL: baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GenerateState produces the opaque anti-CSRF state for the authorization
// redirect: 16 crypto-random bytes, hex-encoded.
func (c *Client) GenerateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		c.logger.Warn("secure randomness unavailable, using fallback state", zap.Error(err))
		return fallbackState
	}
	return hex.EncodeToString(b)
}

// AuthCodeURL builds the provider authorization URL carrying the given
// state and requesting offline access.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange swaps an authorization code for an access token. Provider
// errors are surfaced verbatim.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrExchangeFailed, err)
	}
	return token.AccessToken, nil
}

// FetchProfile calls the provider's authenticated who-am-I endpoint.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrProfileFetch, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: discord returned status %d", xerrors.ErrProfileFetch, res.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrProfileFetch, err)
	}
	return &profile, nil
}
