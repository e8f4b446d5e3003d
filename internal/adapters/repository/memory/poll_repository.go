// Package memory provides an in-process poll store. It is the default
// backend and the test double for the service layer.
package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type pollRepository struct {
	mu    sync.RWMutex
	polls map[string]*domain.Poll
	locks map[string]*sync.Mutex
}

func NewPollRepository() ports.PollStore {
	return &pollRepository{
		polls: make(map[string]*domain.Poll),
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[poll.ID] = poll.Clone()
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll.Clone(), nil
}

// Update serializes concurrent updates to the same poll id behind a
// per-key mutex, so two in-flight votes cannot clobber each other.
func (r *pollRepository) Update(ctx context.Context, id string, fn func(*domain.Poll) error) (*domain.Poll, error) {
	lock := r.keyLock(id)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	stored, ok := r.polls[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	next := stored.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.polls[id] = next
	r.mu.Unlock()
	return next.Clone(), nil
}

func (r *pollRepository) keyLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
