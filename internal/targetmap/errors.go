package targetmap

import "errors"

var (
	// ErrFileNotFound indicates the target map file does not exist
	ErrFileNotFound = errors.New("target map file not found")

	// ErrInvalidFormat indicates the target map could not be parsed
	ErrInvalidFormat = errors.New("invalid target map format")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported target map extension")

	// ErrMissingDatabaseID indicates an entry without a database id
	ErrMissingDatabaseID = errors.New("target map entry missing database_id")
)
