package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx backend response. The status and body are forwarded
// as-is; the gateway never invents its own error for a backend failure.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Body)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.HTTPStatus, msg)
}

// errorBody covers the shapes the backend uses for failures
type errorBody struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// CheckError returns an *APIError for any non-2xx response and nil otherwise.
// The response body is consumed on error.
func CheckError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{HTTPStatus: resp.StatusCode, Body: body}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		apiErr.Code = codeString(eb.Code)
	}
	return apiErr
}

func codeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// StatusCode returns the backend status carried by err, or 0 if err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return 0
}

// IsAuthorizationFailure reports whether err is a 401 or 403 from the backend.
func IsAuthorizationFailure(err error) bool {
	switch StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
