package erp

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Client provides access to every entity client.
type Client interface {
	Accounts() AccountsClient
	ItemAlternatives() ItemAlternativesClient
	LocationCodes() LocationCodesClient
	ProductionLines() ProductionLinesClient

	// Records returns an untyped client for the named entity.
	Records(entity string) (EntityClient[Record], error)
}

// Config represents client configuration for building an erp.Client.
//
// # Authentication precedence
//
// The concrete client (see pkg/erpclient) applies the following order:
//  1. AccessToken: used directly as a static Bearer token. Its expiry is read
//     from the token when it is a JWT.
//  2. ClientID/ClientSecret: OAuth2 client_credentials grant against TokenURL.
//  3. Username/Password: OAuth2 password grant against TokenURL.
//  4. No credentials: requests are sent without authentication.
//
// A 401 response triggers one token refresh and a single replay of the request.
//
// # Tenancy
//
// Tenant is sent on every request as the X-Tenant header.
//
// # Timeouts and retries
//
// Per-request timeouts are controlled via the context passed to client
// methods. Connection errors, 429 and 5xx responses are retried according to
// RetryMax/RetryWaitMin/RetryWaitMax; other 4xx responses are not.
type Config struct {
	// APIEndpoint is the base URL of the ERP REST API. erpclient.New trims a
	// trailing slash and adds "https://" when no scheme is present.
	APIEndpoint string
	// Tenant identifies the company database the calls operate on.
	Tenant string

	// Authentication options (provide one)
	AccessToken  string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	// TokenURL is the OAuth2 token endpoint. Defaults to "<APIEndpoint>/oauth/token".
	TokenURL string

	// Optional configurations
	HTTPTimeout  time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug enables HTTP request/response logging when a Logger is provided.
	Debug  bool
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// RateLimit caps outgoing requests per second; zero disables it.
	RateLimit float64
	// Interceptors run around every request, after the built-in ones.
	Interceptors *InterceptorChain
	// TracerProvider receives one span per request. Defaults to the global
	// OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}
