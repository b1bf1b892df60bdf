package store

import "errors"

var (
	// ErrDuplicateUser is returned by CreateUser when the username is taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrThreadNotFound is returned by AppendToThread when the id does not
	// exist. A zero-row update is never silently accepted.
	ErrThreadNotFound = errors.New("thread not found")
)
