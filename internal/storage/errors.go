package storage

import "errors"

var (
	// ErrRunNotFound indicates the requested run id has no directory or
	// metadata under the store's base directory.
	ErrRunNotFound = errors.New("storage: run not found")

	// ErrNoFrames indicates a run directory without frame data.
	ErrNoFrames = errors.New("storage: run has no frame data")
)
