package api

import (
	"errors"
	"fmt"
)

// Category classifies an OperationError.
type Category string

const (
	// ConfigurationError covers invalid tokens, base URLs and unknown instances.
	ConfigurationError Category = "ConfigurationError"
	// FileReadError means a local file could not be read before an upload.
	FileReadError Category = "FileReadError"
	// RemoteError is a non-2xx HTTP response.
	RemoteError Category = "RemoteError"
	// TransportError is a network failure: DNS, refused connection, TLS, timeout.
	TransportError Category = "TransportError"
	// ParseError is a response body that is not the expected JSON shape.
	ParseError Category = "ParseError"
)

// OperationError is returned by every Client operation and by the dispatch layer.
type OperationError struct {
	Category Category
	// Op is the logical operation, e.g. "upload package" or "delete variable".
	Op string
	// Path is the local file involved in a FileReadError.
	Path string
	// StatusCode and Body are set for RemoteError.
	StatusCode int
	Body       string
	Err        error
}

func (e *OperationError) Error() string {
	switch e.Category {
	case RemoteError:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	case FileReadError:
		return fmt.Sprintf("%s: failed to read file at %s: %v", e.Op, e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Category)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error represents a 404 response.
func (e *OperationError) IsNotFound() bool {
	return e.Category == RemoteError && e.StatusCode == 404
}

// NewRemoteError builds a RemoteError for a non-2xx response.
func NewRemoteError(op string, statusCode int, body string) *OperationError {
	return &OperationError{Category: RemoteError, Op: op, StatusCode: statusCode, Body: body}
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(op string, err error) *OperationError {
	return &OperationError{Category: ConfigurationError, Op: op, Err: err}
}

// CategoryOf returns the category of the first OperationError in err's chain, or "".
func CategoryOf(err error) Category {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Category
	}
	return ""
}

// IsCategory reports whether err carries an OperationError of the given category.
func IsCategory(err error, category Category) bool {
	return err != nil && CategoryOf(err) == category
}
