package registry

import "errors"

// Common errors for registry operations.
var (
	// ErrNotFound indicates the path is not registered.
	ErrNotFound = errors.New("entity not found")

	// ErrNotCopy indicates a delete of an original entity. Originals
	// can only be hidden, never destroyed.
	ErrNotCopy = errors.New("entity is not a runtime copy")

	// ErrSingleton indicates the entity's asset allows one instance.
	ErrSingleton = errors.New("asset is a singleton")

	// ErrPathTaken indicates the target path is already registered.
	ErrPathTaken = errors.New("path already registered")
)
