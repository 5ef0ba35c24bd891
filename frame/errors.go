package frame

import "errors"

var (
	// ErrShapeMismatch indicates that a flat block length differs from the product of its declared dimensions.
	ErrShapeMismatch = errors.New("block length does not match declared shape")

	// ErrInvalidShape indicates a declared dimension that is not positive.
	ErrInvalidShape = errors.New("shape dimensions must be positive")
)
