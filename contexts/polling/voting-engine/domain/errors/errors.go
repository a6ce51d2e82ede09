package errors

import "errors"

var (
	ErrInvalidVoteInput = errors.New("invalid vote input")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollInactive     = errors.New("poll is not currently active")
	ErrAlreadyVoted     = errors.New("voter has already voted in this poll")
	ErrVoteConflict     = errors.New("vote admission conflict")
)
