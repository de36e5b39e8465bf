package erp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		Code:   404,
		Title:  "NotFound",
		Detail: "Account 1000 not found",
	}

	assert.Equal(t, "NotFound: Account 1000 not found (code: 404)", err.Error())
}

func TestResponseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		response *ResponseError
		expected string
	}{
		{
			name:     "status only",
			response: &ResponseError{StatusCode: 502},
			expected: "request failed with status 502",
		},
		{
			name:     "status and body",
			response: &ResponseError{StatusCode: 500, Body: "upstream timeout"},
			expected: "request failed with status 500: upstream timeout",
		},
		{
			name: "single error",
			response: &ResponseError{
				Errors: []APIError{{Code: 422, Title: "Unprocessable", Detail: "CODE is required"}},
			},
			expected: "Unprocessable: CODE is required (code: 422)",
		},
		{
			name: "multiple errors",
			response: &ResponseError{
				Errors: []APIError{
					{Code: 422, Title: "Unprocessable", Detail: "CODE is required"},
					{Code: 422, Title: "Unprocessable", Detail: "TITLE is required"},
				},
			},
			expected: "multiple errors: [{422 Unprocessable CODE is required} {422 Unprocessable TITLE is required}]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.response.Error())
		})
	}
}

func TestResponseError_FirstError(t *testing.T) {
	t.Run("with errors", func(t *testing.T) {
		response := &ResponseError{
			Errors: []APIError{
				{Code: 404, Title: "NotFound", Detail: "Not found"},
				{Code: 409, Title: "Conflict", Detail: "Conflict"},
			},
		}

		first := response.FirstError()
		require.NotNil(t, first)
		assert.Equal(t, 404, first.Code)
		assert.Equal(t, "NotFound", first.Title)
	})

	t.Run("without errors", func(t *testing.T) {
		response := &ResponseError{}
		assert.Nil(t, response.FirstError())
	})
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		unauthorized bool
		forbidden    bool
	}{
		{name: "APIError not found", err: &APIError{Code: ErrorCodeNotFound}, notFound: true},
		{name: "APIError unauthorized", err: &APIError{Code: ErrorCodeNotAuthenticated}, unauthorized: true},
		{name: "APIError forbidden", err: &APIError{Code: ErrorCodeNotAuthorized}, forbidden: true},
		{
			name:     "ResponseError with not found entry",
			err:      &ResponseError{Errors: []APIError{{Code: ErrorCodeNotFound}}, StatusCode: 404},
			notFound: true,
		},
		{name: "ResponseError status only", err: &ResponseError{StatusCode: 403}, forbidden: true},
		{name: "wrapped ResponseError", err: fmt.Errorf("get account: %w", &ResponseError{StatusCode: 401}), unauthorized: true},
		{name: "entry code wins over status", err: &ResponseError{Errors: []APIError{{Code: 409}}, StatusCode: 404}},
		{name: "other error type", err: errors.New("some error")},
		{name: "nil error", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err))
			assert.Equal(t, tt.forbidden, IsForbidden(tt.err))
		})
	}
}

func TestParseResponseError(t *testing.T) {
	errResp, err := ParseResponseError([]byte(`{"errors":[{"code":404,"title":"NotFound","detail":"no such account"}]}`))
	require.NoError(t, err)
	require.Len(t, errResp.Errors, 1)
	assert.Equal(t, "no such account", errResp.Errors[0].Detail)

	_, err = ParseResponseError([]byte(`not json`))
	require.Error(t, err)
}
