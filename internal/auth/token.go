package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/erp-sdk/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager supplies bearer tokens to the transport.
type TokenManager interface {
	// GetToken returns a valid access token, obtaining a new one if needed.
	GetToken(ctx context.Context) (string, error)
	// RefreshToken discards the current token and obtains a new one.
	RefreshToken(ctx context.Context) error
	// SetToken replaces the current token.
	SetToken(token string, expiresAt time.Time)
}

// Token is an OAuth2 token response.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be used. Tokens expiring within
// the refresh buffer are treated as expired; tokens without an expiry never
// expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token and is safe for concurrent use.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}

// TokenExpiry reads the exp claim of a JWT access token. The signature is not
// verified; the result only schedules refreshes.
func TokenExpiry(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if exp == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return exp.Time, nil
}

// StaticTokenManager serves a fixed access token and cannot refresh it.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager wraps accessToken. When the token is a JWT its exp
// claim becomes the expiry.
func NewStaticTokenManager(accessToken string) *StaticTokenManager {
	manager := &StaticTokenManager{store: NewTokenStore()}
	manager.SetToken(accessToken, time.Time{})

	return manager
}

// GetToken returns the static token, or ErrNotAuthenticated once it expired.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", constants.ErrNotAuthenticated
	}

	return token.AccessToken, nil
}

// RefreshToken always fails: a static token has no refresh path.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return constants.ErrNoRefreshToken
}

// SetToken replaces the token. A zero expiresAt is filled from the JWT exp
// claim when present.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	if expiresAt.IsZero() {
		if exp, err := TokenExpiry(token); err == nil {
			expiresAt = exp
		}
	}

	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}
