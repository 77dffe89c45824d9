package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrCacheMiss indicates the cache holds no entry for the key.
	ErrCacheMiss = errors.New("repository: cache miss")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate record")
)
