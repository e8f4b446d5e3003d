package ports

import (
	"context"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
)

// PollStore is the durable owner of poll records, keyed by the opaque
// poll id. Update is the atomic read-modify-write: implementations must
// serialize concurrent updates to the same id (a per-key lock, a row
// lock, or an optimistic retry that re-runs fn on conflict). fn receives
// a private copy; returning an error aborts the update and nothing is
// written.
type PollStore interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	Update(ctx context.Context, id string, fn func(*domain.Poll) error) (*domain.Poll, error)
}

type PollService interface {
	Create(ctx context.Context, opts domain.CreatePollOptions, creator domain.VoterRef) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	Finish(ctx context.Context, pollID, requesterID string) (*domain.Poll, error)
	NonVoters(ctx context.Context, pollID string, members []domain.VoterRef) ([]domain.VoterRef, error)
}

type VoteService interface {
	Vote(ctx context.Context, pollID string, voter domain.VoterRef, choice int) (*domain.Poll, error)
}
