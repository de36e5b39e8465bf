package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
)

// Grant types.
const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
)

// OAuth2Config configures an OAuth2TokenManager.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
	HTTPClient   *http.Client
}

// OAuth2TokenManager obtains tokens from an OAuth2 token endpoint using the
// refresh_token, client_credentials or password grant.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	// refreshMutex serialises token requests so concurrent callers share one.
	refreshMutex sync.Mutex
}

// NewOAuth2TokenManager creates a manager. An AccessToken in config seeds the
// store, with its expiry read from the JWT when possible.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
	}

	if config.AccessToken != "" {
		expiresAt, _ := TokenExpiry(config.AccessToken)
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
			ExpiresAt:    expiresAt,
		})
	}

	return manager
}

// NewTokenURL derives the token endpoint from the API endpoint.
func NewTokenURL(apiEndpoint string) string {
	return strings.TrimSuffix(apiEndpoint, "/") + constants.TokenPath
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.refreshMutex.Lock()
	defer m.refreshMutex.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken forces a token refresh.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.refreshMutex.Lock()
	defer m.refreshMutex.Unlock()

	_, err := m.fetchToken(ctx)

	return err
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	var refreshToken string
	if current := m.store.Get(); current != nil {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// CurrentToken returns the stored token, which may be expired or nil.
func (m *OAuth2TokenManager) CurrentToken() *Token {
	return m.store.Get()
}

// fetchToken tries the refresh token first and falls back to the configured
// credentials.
func (m *OAuth2TokenManager) fetchToken(ctx context.Context) (*Token, error) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	var refreshErr error

	if refreshToken != "" {
		token, err := m.requestToken(ctx, url.Values{
			"grant_type":    {GrantRefreshToken},
			"refresh_token": {refreshToken},
		})
		if err == nil {
			return token, nil
		}

		refreshErr = err
	}

	form, ok := m.credentialsForm()
	if !ok {
		if refreshErr != nil {
			return nil, refreshErr
		}

		return nil, constants.ErrNoCredentials
	}

	return m.requestToken(ctx, form)
}

func (m *OAuth2TokenManager) credentialsForm() (url.Values, bool) {
	switch {
	case m.config.Username != "" && m.config.Password != "":
		return url.Values{
			"grant_type": {GrantPassword},
			"username":   {m.config.Username},
			"password":   {m.config.Password},
		}, true
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		return url.Values{"grant_type": {GrantClientCredentials}}, true
	default:
		return nil, false
	}
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set(constants.HeaderContentType, "application/x-www-form-urlencoded")
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	if m.config.ClientID != "" {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse

		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s (status %d)",
				constants.ErrTokenRequestFailed, errResp.Error, errResp.ErrorDescription, resp.StatusCode)
		}

		return nil, fmt.Errorf("%w: status %d", constants.ErrTokenRequestFailed, resp.StatusCode)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, constants.ErrEmptyAccessToken
	}

	switch {
	case token.ExpiresIn > 0:
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	default:
		if exp, expErr := TokenExpiry(token.AccessToken); expErr == nil {
			token.ExpiresAt = exp
		}
	}

	if token.RefreshToken == "" {
		if current := m.store.Get(); current != nil {
			token.RefreshToken = current.RefreshToken
		}
	}

	m.store.Set(&token)

	return &token, nil
}
