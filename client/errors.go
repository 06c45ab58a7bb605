// client/errors.go
package client

import (
	"fmt"
	"strings"

	"github.com/gkirkpatrick/magic-notes/domain"
)

// ConnectionError is a transport-level failure: the request never produced an
// HTTP response.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "connection error: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message carries the server-provided error
// string when one was present.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status %d: %s", e.StatusCode, e.Message)
}

// SchemaError is a 2xx response whose body does not conform to the expected
// shape. Fields lists the violated field names.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Fields, ", ")
}

// ValidationError is a locally rejected input; the request was never issued.
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string { return e.Fields.Error() }
func (e *ValidationError) Unwrap() error { return e.Fields }
