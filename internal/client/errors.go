package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned for any 401 on an authenticated call
var ErrUnauthorized = errors.New("session expired, please log in again")

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError is a request rejected before it was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Message returns the user-facing text for err: the server's or the
// validator's message when there is one, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	if errors.Is(err, ErrUnauthorized) {
		return ErrUnauthorized.Error()
	}
	return fallback
}

// newAPIError builds an APIError from a response body. The server's "error"
// field wins; a plain-text body is used when textFallback is set.
func newAPIError(status int, body []byte, fallback string, textFallback bool) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	} else if textFallback {
		msg = strings.TrimSpace(string(body))
	}

	if msg == "" {
		msg = fallback
	}
	return &APIError{Status: status, Message: msg}
}
