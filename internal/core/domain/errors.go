package domain

import "errors"

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidOptions     = errors.New("invalid poll options")
	ErrInvalidChoice      = errors.New("invalid choice for this poll")
	ErrPollFinished       = errors.New("votes are closed for this poll")
	ErrAlreadyFinished    = errors.New("poll is already finished")
	ErrNotCreator         = errors.New("only the poll creator can finish this poll")
	ErrInconsistentRecord = errors.New("poll record is inconsistent")
)
