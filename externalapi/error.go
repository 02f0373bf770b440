// Package externalapi implements the RxNorm and OpenFDA drug data clients,
// their response models, the outbound rate limiter and the caching
// decorators.
package externalapi

import "fmt"

// APIError is the single distinguished failure kind raised by the external
// clients, carrying the source API name and, when known, the HTTP status.
// Empty result sets are normal return values, not APIErrors.
type APIError struct {
	API        string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.API, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.API, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError builds an APIError without a status code.
func NewAPIError(api, message string, err error) *APIError {
	return &APIError{API: api, Message: message, Err: err}
}

// NewAPIStatusError builds an APIError for a non-success HTTP status.
func NewAPIStatusError(api, message string, status int) *APIError {
	return &APIError{API: api, Message: message, StatusCode: status}
}
