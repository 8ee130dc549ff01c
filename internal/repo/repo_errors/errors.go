package repo_errors

import "errors"

var (
	// ErrNotFound - no row matched the lookup.
	ErrNotFound = errors.New("not found")

	// ErrConflict - a conditional write matched no row because another writer
	// moved the state first.
	ErrConflict = errors.New("state changed concurrently")

	// ErrAlreadyExists - a uniqueness constraint rejected the insert.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSerialization - the transaction lost a serialization or deadlock
	// race (SQLSTATE 40001/40P01) and may be retried.
	ErrSerialization = errors.New("transaction serialization failure")
)
