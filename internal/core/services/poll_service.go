package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type pollService struct {
	store     ports.PollStore
	scheduler ports.Scheduler
	now       func() time.Time
}

func NewPollService(store ports.PollStore, scheduler ports.Scheduler) ports.PollService {
	return &pollService{
		store:     store,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *pollService) Create(ctx context.Context, opts domain.CreatePollOptions, creator domain.VoterRef) (*domain.Poll, error) {
	if err := opts.Validate(s.now()); err != nil {
		return nil, err
	}

	poll := domain.NewPoll(opts, creator)
	if err := s.store.Save(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to save poll: %w", err)
	}

	if opts.FinishAt != nil {
		task := ports.FinishTask{PollID: poll.ID, CreatorID: creator.ID}
		if err := s.scheduler.ScheduleOnce(ctx, task, *opts.FinishAt); err != nil {
			return nil, fmt.Errorf("failed to schedule poll timeout: %w", err)
		}
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	return s.store.GetByID(ctx, id)
}

// Finish closes the poll. The manual path passes the acting user as
// requester; the scheduled path passes the creator id carried in its
// task payload, so the same authorization check covers both.
func (s *pollService) Finish(ctx context.Context, pollID, requesterID string) (*domain.Poll, error) {
	return s.store.Update(ctx, pollID, func(p *domain.Poll) error {
		return p.Finish(requesterID)
	})
}

func (s *pollService) NonVoters(ctx context.Context, pollID string, members []domain.VoterRef) ([]domain.VoterRef, error) {
	poll, err := s.store.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return poll.NonVoters(members), nil
}
