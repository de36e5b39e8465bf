package erpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/erp-sdk/internal/client"
	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
)

// New creates a new ERP API client. The config is copied; the caller's value
// is not modified.
func New(ctx context.Context, config *erp.Config) (erp.Client, error) {
	if config == nil {
		return nil, erp.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, erp.ErrAPIEndpointRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	erpClient, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return erpClient, nil
}

// NormalizeEndpoint trims a trailing slash and adds "https://" when no scheme
// is present.
func NormalizeEndpoint(endpoint string) string {
	apiEndpoint := strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	return apiEndpoint
}

// NewWithEndpoint creates a new client with just an API endpoint and tenant (no auth).
func NewWithEndpoint(ctx context.Context, endpoint, tenant string) (erp.Client, error) {
	return New(ctx, &erp.Config{
		APIEndpoint: endpoint,
		Tenant:      tenant,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, tenant, token string) (erp.Client, error) {
	return New(ctx, &erp.Config{
		APIEndpoint: endpoint,
		Tenant:      tenant,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
func NewWithClientCredentials(ctx context.Context, endpoint, tenant, clientID, clientSecret string) (erp.Client, error) {
	return New(ctx, &erp.Config{
		APIEndpoint:  endpoint,
		Tenant:       tenant,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using username/password authentication.
func NewWithPassword(ctx context.Context, endpoint, tenant, username, password string) (erp.Client, error) {
	return New(ctx, &erp.Config{
		APIEndpoint: endpoint,
		Tenant:      tenant,
		Username:    username,
		Password:    password,
	})
}
