package erp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Query compilation errors. All of them are raised before any request is built;
// callers match them with errors.Is.
var (
	ErrUnknownField            = errors.New("unknown field")
	ErrInvalidOperator         = errors.New("invalid operator")
	ErrEmptyArrayCriterion     = errors.New("empty array criterion")
	ErrNullLiteral             = errors.New("null literal")
	ErrInvalidPagination       = errors.New("invalid pagination")
	ErrInvalidLiteral          = errors.New("invalid literal")
	ErrInvalidSort             = errors.New("invalid sort")
	ErrEmptyGroup              = errors.New("empty expression group")
	ErrInvalidCriteriaDocument = errors.New("invalid criteria document")
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrEntityNotFound      = errors.New("entity not found")
	ErrIDRequired          = errors.New("id is required")
)

// APIError represents a single error entry returned by the ERP API.
type APIError struct {
	Code   int    `json:"code"   yaml:"code"`
	Title  string `json:"title"  yaml:"title"`
	Detail string `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (code: %d)", e.Title, e.Detail, e.Code)
}

// ResponseError represents the error envelope of a non-2xx response.
type ResponseError struct {
	Errors     []APIError `json:"errors"`
	StatusCode int        `json:"-"`
	Body       string     `json:"-"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		if e.Body != "" {
			return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
		}

		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	return fmt.Sprintf("multiple errors: %v", e.Errors)
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Common HTTP-level error codes used by the ERP API.
const (
	ErrorCodeBadRequest       = 400
	ErrorCodeNotAuthenticated = 401
	ErrorCodeNotAuthorized    = 403
	ErrorCodeNotFound         = 404
	ErrorCodeConflict         = 409
	ErrorCodeUnprocessable    = 422
	ErrorCodeTooManyRequests  = 429
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrorCodeNotAuthenticated)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasCode(err, ErrorCodeNotAuthorized)
}

func hasCode(err error, code int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}

	errResp := &ResponseError{}
	if errors.As(err, &errResp) {
		if first := errResp.FirstError(); first != nil {
			return first.Code == code
		}

		return errResp.StatusCode == code
	}

	return false
}

// ParseResponseError parses an error envelope from JSON.
func ParseResponseError(data []byte) (*ResponseError, error) {
	var errResp ResponseError

	err := json.Unmarshal(data, &errResp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response error: %w", err)
	}

	return &errResp, nil
}
