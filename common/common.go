package common

import (
	"errors"
	"strings"
)

// Simple time formats used across the backtester
const (
	SimpleTimeFormat = "2006-01-02 15:04:05"
	DateFormat       = "2006-01-02"
)

var (
	// ErrNilPointer defines an error for a nil pointer
	ErrNilPointer = errors.New("nil pointer")
	// ErrFileNotFound is returned when a path does not exist
	ErrFileNotFound = errors.New("file not found")
)

// multiError joins errors while preserving errors.Is/As across every member
type multiError struct {
	loadedErrors []error
}

// AppendError appends an error to a list of existing errors. Either argument
// can be nil. A multierror is returned if both are non-nil.
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	var loaded []error
	if oldErr, ok := original.(multiError); ok { //nolint:errorlint // only flatten direct multierrors
		loaded = append(loaded, oldErr.loadedErrors...)
	} else {
		loaded = append(loaded, original)
	}
	if newErr, ok := incoming.(multiError); ok { //nolint:errorlint // only flatten direct multierrors
		loaded = append(loaded, newErr.loadedErrors...)
	} else {
		loaded = append(loaded, incoming)
	}
	return multiError{loadedErrors: loaded}
}

// Error returns all loaded errors joined by a comma
func (e multiError) Error() string {
	allErrors := make([]string, len(e.loadedErrors))
	for x := range e.loadedErrors {
		allErrors[x] = e.loadedErrors[x].Error()
	}
	return strings.Join(allErrors, ", ")
}

// Unwrap returns the loaded errors for errors.Is and errors.As
func (e multiError) Unwrap() []error {
	return e.loadedErrors
}
