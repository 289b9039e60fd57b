package util

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage upload failed")
	ErrRateLimited  = errors.New("too many requests")
)
