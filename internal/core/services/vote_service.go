package services

import (
	"context"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type voteService struct {
	store ports.PollStore
}

func NewVoteService(store ports.PollStore) ports.VoteService {
	return &voteService{
		store: store,
	}
}

// Vote applies one user's vote intent as a single load-transform-store
// sequence against the poll store. The transform is pure; the store's
// Update provides the per-key atomicity. A record that fails its
// consistency check is never written back.
func (s *voteService) Vote(ctx context.Context, pollID string, voter domain.VoterRef, choice int) (*domain.Poll, error) {
	return s.store.Update(ctx, pollID, func(p *domain.Poll) error {
		if err := p.ApplyVote(voter, choice); err != nil {
			return err
		}
		return p.CheckConsistent()
	})
}
