package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrEdgeExists indicates the follow edge is already present.
	ErrEdgeExists = errors.New("repository: follow edge exists")
)
