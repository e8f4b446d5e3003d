package domain

import (
	"fmt"
	"time"
)

// CreatePollOptions carries validated poll-creation parameters, usually
// produced by the command parser or the creation modal.
type CreatePollOptions struct {
	Question       string
	Choices        []string
	IsConfidential bool
	ShowResults    bool
	SingleChoice   bool
	FinishAt       *time.Time
}

// Validate checks the creation constraints. Violations are reported one
// at a time: a missing question first, then the choice minimum, then a
// finish time that is not in the future.
func (o CreatePollOptions) Validate(now time.Time) error {
	if o.Question == "" {
		return fmt.Errorf("%w: missing argument %q", ErrInvalidOptions, "question")
	}
	if len(o.Choices) < 2 {
		return fmt.Errorf("%w: poll requires at least 2 choices", ErrInvalidOptions)
	}
	if o.FinishAt != nil && !o.FinishAt.After(now) {
		return fmt.Errorf("%w: finish date cannot be in the past", ErrInvalidOptions)
	}
	return nil
}
