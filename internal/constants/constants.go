package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for token requests.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Token handling.
const (
	// TokenExpiryBuffer is subtracted from a token's expiry so it is refreshed
	// before the server starts rejecting it.
	TokenExpiryBuffer = 30 * time.Second

	// DefaultTokenLifetime is assumed when a token carries no expiry.
	DefaultTokenLifetime = 1 * time.Hour

	// TokenPath is appended to the API endpoint when no token URL is configured.
	TokenPath = "/oauth/token"
)

// Request headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderTenant        = "X-Tenant"
	HeaderRequestID     = "X-Request-Id"
	HeaderUserAgent     = "User-Agent"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"
)

// Client identification.
const (
	// Version is the SDK version reported in the User-Agent.
	Version = "0.1.0"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "erp-sdk-go/" + Version
)

// Response body limits.
const (
	// MaxErrorBodyLog caps how much of an error body is copied into logs.
	MaxErrorBodyLog = 2048
)

// Date formats used by RPC query parameters.
const (
	DateFormat = "2006-01-02"
)

// CLI display.
const (
	// DefaultListLimit is the page size used by `erp list` when none is given.
	DefaultListLimit = 50

	// OutputTable, OutputJSON and OutputYAML are the accepted --output values.
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)
