package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrGone           = errors.New("gone")
	ErrInvalidInput   = errors.New("invalid input")
	ErrHostNotAllowed = errors.New("destination host not allowed")
)
