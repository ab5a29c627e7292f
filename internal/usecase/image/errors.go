package image

import "errors"

var (
	ErrEmptyFile           = errors.New("empty file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFormat   = errors.New("unsupported image format")
	ErrImageNotReady       = errors.New("image is not processed yet")
	ErrNoRenderedForOp     = errors.New("no rendered output for operation")
	ErrEnqueueFailed       = errors.New("failed to enqueue composition task")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrImageAlreadyDeleted = errors.New("image already deleted")
)
