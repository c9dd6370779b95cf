package vectorindex

import "errors"

var (
	// ErrEmptyIndex signals an attempt to build an index without vectors.
	ErrEmptyIndex = errors.New("empty index")
	// ErrDimension signals a vector whose length differs from the index dimension.
	ErrDimension = errors.New("dimension mismatch")
	// ErrCorrupt signals a persisted index that fails validation.
	ErrCorrupt = errors.New("corrupt index")
)
