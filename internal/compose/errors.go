package compose

import "errors"

var (
	// ErrInvalidInput reports zero or negative source/canvas dimensions
	// or an invalid configuration value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedColorMode reports a source image whose color model
	// cannot be normalized to RGB/RGBA.
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
	// ErrComposition reports an internal inconsistency, such as a
	// violated planner postcondition. No partial result is returned.
	ErrComposition = errors.New("composition failed")
)
