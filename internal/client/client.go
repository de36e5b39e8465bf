package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/erp-sdk/internal/auth"
	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/fivetwenty-io/erp-sdk/internal/http"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the erp.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       erp.Logger

	// Resource clients
	accounts         *AccountsClient
	itemAlternatives *ItemAlternativesClient
	locationCodes    *LocationCodesClient
	productionLines  *ProductionLinesClient
}

// createTokenManager creates the token manager for the configured credentials.
// An access token combined with credentials seeds an OAuth2 manager so the
// token can be replaced once it expires or is rejected.
func createTokenManager(config *erp.Config) auth.TokenManager {
	hasCredentials := (config.ClientID != "" && config.ClientSecret != "") ||
		(config.Username != "" && config.Password != "") ||
		config.RefreshToken != ""

	switch {
	case config.AccessToken != "" && !hasCredentials:
		return auth.NewStaticTokenManager(config.AccessToken)
	case hasCredentials:
		return auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:     getTokenURL(config),
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Username:     config.Username,
			Password:     config.Password,
			RefreshToken: config.RefreshToken,
			AccessToken:  config.AccessToken,
		})
	default:
		return nil // No authentication
	}
}

// getTokenURL returns token URL from config or derives it from the endpoint.
func getTokenURL(config *erp.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return auth.NewTokenURL(config.APIEndpoint)
}

// createInterceptors builds the chain run around every request: the rate
// limiter first, then the caller's interceptors.
func createInterceptors(config *erp.Config) (*erp.InterceptorChain, error) {
	if config.RateLimit == 0 {
		return config.Interceptors, nil
	}

	limiter, err := erp.RateLimitInterceptor(config.RateLimit, int(config.RateLimit)+1)
	if err != nil {
		return nil, err
	}

	chain := erp.NewInterceptorChain().AddRequestInterceptor(limiter)

	if config.Interceptors != nil {
		chain.AddRequestInterceptor(config.Interceptors.ExecuteRequestInterceptors)
		chain.AddResponseInterceptor(config.Interceptors.ExecuteResponseInterceptors)
	}

	return chain, nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *erp.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Tenant != "" {
		httpOpts = append(httpOpts, http.WithTenant(config.Tenant))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, http.WithTracerProvider(config.TracerProvider))
	}

	chain, err := createInterceptors(config)
	if err != nil {
		return nil, err
	}

	if chain != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts, nil
}

// New creates a new ERP API client.
func New(ctx context.Context, config *erp.Config) (*Client, error) {
	if config == nil {
		return nil, erp.ErrConfigRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a new ERP API client with a custom token manager.
func NewWithTokenManager(config *erp.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, erp.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, erp.ErrAPIEndpointRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, fmt.Errorf("configuring transport: %w", err)
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Accounts implements erp.Client.Accounts.
func (c *Client) Accounts() erp.AccountsClient {
	return c.accounts
}

// ItemAlternatives implements erp.Client.ItemAlternatives.
func (c *Client) ItemAlternatives() erp.ItemAlternativesClient {
	return c.itemAlternatives
}

// LocationCodes implements erp.Client.LocationCodes.
func (c *Client) LocationCodes() erp.LocationCodesClient {
	return c.locationCodes
}

// ProductionLines implements erp.Client.ProductionLines.
func (c *Client) ProductionLines() erp.ProductionLinesClient {
	return c.productionLines
}

// Records implements erp.Client.Records.
func (c *Client) Records(entity string) (erp.EntityClient[erp.Record], error) {
	found, err := erp.LookupEntity(entity)
	if err != nil {
		return nil, err
	}

	return NewEntityClient[erp.Record](c.httpClient, found), nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.accounts = NewAccountsClient(c.httpClient)
	c.itemAlternatives = NewItemAlternativesClient(c.httpClient)
	c.locationCodes = NewLocationCodesClient(c.httpClient)
	c.productionLines = NewProductionLinesClient(c.httpClient)
}
