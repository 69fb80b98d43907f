package storage

import "errors"

var (
	// ErrUnexpectedStatus is returned when the resource did not answer 200.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrWrite is returned when the payload could not be written to disk.
	ErrWrite = errors.New("failed to write resource")
)
