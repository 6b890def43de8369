package database

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrOverlap is returned when a room already holds an active booking for an overlapping range.
	ErrOverlap = errors.New("room already booked for an overlapping date range")
	// ErrStatusMismatch is returned by a compare-and-set whose expected status no longer holds.
	ErrStatusMismatch = errors.New("booking status changed concurrently")
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("duplicate record")
)
