// Package store persists registrations and allocates bib numbers.
package store

import (
	"raceday/pkg/platform/sentinel"
)

// Errors returned by every store implementation.
var (
	ErrNotFound     = sentinel.ErrNotFound
	ErrAlreadyUsed  = sentinel.ErrAlreadyUsed
	ErrInvalidState = sentinel.ErrInvalidState
)
