package errors

import "errors"

var (
	ErrInvalidPollInput = errors.New("invalid poll input")
	ErrPollNotFound     = errors.New("poll not found")
	ErrForbidden        = errors.New("only the poll creator may modify this poll")
)
