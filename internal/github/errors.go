package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 response. An empty repository answers
// ref lookups with 409, which is treated the same way.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.StatusCode == http.StatusNotFound ||
		(apiErr.StatusCode == http.StatusConflict && strings.Contains(strings.ToLower(apiErr.Message), "empty"))
}

// IsRefRejected reports whether a ref create or update was refused because the ref
// is not where the caller expected it.
func IsRefRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if apiErr.StatusCode == http.StatusConflict {
		return true
	}

	message := strings.ToLower(apiErr.Message)

	return apiErr.StatusCode == http.StatusUnprocessableEntity &&
		(strings.Contains(message, "fast forward") || strings.Contains(message, "already exists"))
}

func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var wire struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}

	if json.Unmarshal(body, &wire) == nil && wire.Message != "" {
		apiErr.Message = wire.Message
		apiErr.DocumentationURL = wire.DocumentationURL
	} else {
		apiErr.Message = string(body)
	}

	return apiErr
}
