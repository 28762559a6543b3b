package repository

import "errors"

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when an optimistic-lock write carried a
// stale version: a concurrent writer got there first.
var ErrVersionConflict = errors.New("version conflict")
