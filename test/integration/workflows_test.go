//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueryWorkflow_Offline compiles filters and query strings with the
// built binary. No API is needed.
func TestQueryWorkflow_Offline(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("query", "compile", "accounts",
		"--where", `{"currency": ["EUR", "USD"], "balance": {"gte": 100, "lte": 500}}`)
	require.NoError(t, err, stderr)
	assert.Equal(t,
		"(CURRENCY eq 'EUR' or CURRENCY eq 'USD') and BALANCE gte 100 and BALANCE lte 500",
		strings.TrimSpace(stdout))

	stdout, stderr, err = runner.RunWithInput("code: {like: 'A*'}\n", "query", "build", "location-codes",
		"--where", "-", "--sort", "code desc", "--limit", "10")
	require.NoError(t, err, stderr)
	assert.Equal(t, "sort=CODE%20desc&limit=10&q=CODE%20like%20%27A%2A%27", strings.TrimSpace(stdout))

	_, stderr, err = runner.Run("query", "compile", "accounts", "--where", `{"code": []}`)
	require.Error(t, err)
	assert.Contains(t, stderr, "empty array criterion")

	stdout, stderr, err = runner.Run("entities", "accounts", "--output", "json")
	require.NoError(t, err, stderr)
	AssertJSONOutput(t, stdout)
}

// TestRecordsWorkflow_LiveAPI lists and fetches accounts from a live tenant.
func TestRecordsWorkflow_LiveAPI(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingAPI(t)

	runner := NewCommandRunner(config, t)
	require.NoError(t, runner.Login())

	stdout, stderr, err := runner.Run("list", "accounts",
		"--fields", "code,title", "--limit", "5", "--count", "--output", "json")
	require.NoError(t, err, stderr)
	AssertJSONOutput(t, stdout)

	var list struct {
		Data  []map[string]interface{} `json:"data"`
		Count *int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &list))
	assert.LessOrEqual(t, len(list.Data), 5)
	require.NotNil(t, list.Count)

	if len(list.Data) == 0 {
		t.Skip("tenant has no accounts")
	}

	code, ok := list.Data[0]["CODE"].(string)
	require.True(t, ok)

	stdout, stderr, err = runner.Run("get", "accounts", code, "--output", "json")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, code)
}
