// Package apperr defines the error taxonomy shared by the loader and its callers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrTransport covers non-success HTTP statuses and network failures.
	ErrTransport = errors.New("transport failure")
	// ErrParse is returned for malformed JSON.
	ErrParse = errors.New("parse failure")
	// ErrShape is returned when the parsed value is not an object.
	ErrShape = errors.New("invalid data: expected an object")

	ErrUnsupportedType = errors.New("unsupported file type")
	ErrStorage         = errors.New("storage unavailable")
)
