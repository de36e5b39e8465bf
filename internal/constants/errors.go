package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIConfigured  = errors.New("no API endpoint configured, use 'erp login' or --api to set one")
	ErrNotAuthenticated = errors.New("not authenticated, use 'erp login' first")
)

// Token errors.
var (
	ErrInvalidJWTFormat    = errors.New("invalid JWT format")
	ErrNoExpirationClaim   = errors.New("no expiration claim found")
	ErrNoRefreshToken      = errors.New("no refresh token available")
	ErrTokenRequestFailed  = errors.New("token request failed")
	ErrNoCredentials       = errors.New("no credentials configured for token request")
	ErrEmptyAccessToken    = errors.New("token response did not include an access token")
	ErrTokenManagerMissing = errors.New("token manager is not configured")
)

// CLI validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, use table, json or yaml")
	ErrEntityRequired      = errors.New("entity name is required")
	ErrPasswordRequired    = errors.New("password or client secret is required")
	ErrUnknownConfigKey    = errors.New("unknown config key")
	ErrDocumentRequired    = errors.New("a --where document or --file is required")
)
