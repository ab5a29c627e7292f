package renderer

import "errors"

var (
	ErrDecodeFailed         = errors.New("failed to decode source image")
	ErrUnsupportedOperation = errors.New("unsupported operation type")
)
