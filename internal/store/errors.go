package store

import "errors"

var (
	// ErrTwitterIDConflict is returned by CreateAccount when another account
	// with the same Twitter ID already exists. Two requests authenticating
	// the same brand-new identity can race on creation; the unique index is
	// the backstop and callers retry the losing side as a lookup.
	ErrTwitterIDConflict = errors.New("twitter id already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")
)
