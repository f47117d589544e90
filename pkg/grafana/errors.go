package grafana

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error from the Grafana API, or a normalized
// resource miss. It is the resource tier of the error model: entity not
// found and transport non-success both surface as a status/message value
// callers branch on, never as a panic.
type APIError struct {
	Status  int    `json:"status"  yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Message, e.Status)
}

// ErrDatasourcesNotFound is the normalized result for a datasource
// collection that is empty or unreachable. Identity resolution treats both
// uniformly, matching the server-side contract.
var ErrDatasourcesNotFound = &APIError{
	Status:  http.StatusNotFound,
	Message: "No Datasources found",
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}

	return false
}

// MissingParameterError reports a required parameter that was absent from
// a parameter mapping. Argument tier: raised before any I/O.
type MissingParameterError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Field)
}

// TypeMismatchError reports a parameter whose value has the wrong type.
// Argument tier: raised before any I/O.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q must be of type %s, got %s", e.Field, e.Expected, e.Actual)
}

// InvalidArgumentError reports caller input that is well-typed but
// unusable: an empty identifier, a disallowed enum value, a reference
// that is neither name nor id. Argument tier: raised before any I/O.
type InvalidArgumentError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Common static errors that can be wrapped with context.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrConfigRequired      = errors.New("config is required")
	ErrEmptyDatasourceRef  = errors.New("datasource reference must not be empty")
	ErrZeroDatasourceID    = errors.New("datasource id 0 is reserved and cannot be addressed")
)
