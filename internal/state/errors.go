package state

import "errors"

var (
	// ErrStateNotFound indicates the state file does not exist
	ErrStateNotFound = errors.New("upload state not found")

	// ErrStateCorrupted indicates the state file contains invalid JSON
	ErrStateCorrupted = errors.New("upload state is corrupted")

	// ErrVersionMismatch indicates an incompatible state schema version
	ErrVersionMismatch = errors.New("upload state version mismatch")
)
