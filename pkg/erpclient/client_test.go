package erpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/erp-sdk/pkg/erp"
	"github.com/fivetwenty-io/erp-sdk/pkg/erpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := erpclient.New(context.Background(), &erp.Config{APIEndpoint: "https://erp.example.com"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := erpclient.New(context.Background(), nil)
		require.ErrorIs(t, err, erp.ErrConfigRequired)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := erpclient.New(context.Background(), &erp.Config{Tenant: "acme"})
		require.ErrorIs(t, err, erp.ErrAPIEndpointRequired)
	})

	t.Run("does not modify the caller's config", func(t *testing.T) {
		t.Parallel()

		config := &erp.Config{APIEndpoint: "erp.example.com/"}

		_, err := erpclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "erp.example.com/", config.APIEndpoint)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "erp.example.com", expected: "https://erp.example.com"},
		{input: "https://erp.example.com/", expected: "https://erp.example.com"},
		{input: "http://localhost:8080", expected: "http://localhost:8080"},
		{input: " erp.example.com/api/ ", expected: "https://erp.example.com/api"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, erpclient.NormalizeEndpoint(tt.input))
		})
	}
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "acme", r.Header.Get("X-Tenant"))
		assert.Equal(t, "/production-lines/L1", r.URL.Path)
		_, _ = w.Write([]byte(`{"CODE":"L1","TITLE":"Line 1","PLANT_CODE":"P1"}`))
	}))
	defer server.Close()

	client, err := erpclient.NewWithToken(context.Background(), server.URL+"/", "acme", "test-token")
	require.NoError(t, err)

	line, err := client.ProductionLines().GetByID(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "P1", line.PlantCode)
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := erpclient.NewWithEndpoint(context.Background(), "https://erp.example.com", "acme")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithCredentials(t *testing.T) {
	t.Parallel()

	client, err := erpclient.NewWithClientCredentials(context.Background(), "https://erp.example.com", "acme", "id", "secret")
	require.NoError(t, err)
	assert.NotNil(t, client)

	client, err = erpclient.NewWithPassword(context.Background(), "https://erp.example.com", "acme", "user", "pass")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
