package memory

import (
	"context"
	"sync"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/notify"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
)

// PollRepository is an in-memory poll registry.
type PollRepository struct {
	mu    sync.RWMutex
	polls map[string]domain.Poll
}

func NewPollRepository() *PollRepository {
	return &PollRepository{
		polls: make(map[string]domain.Poll),
	}
}

func (r *PollRepository) Get(_ context.Context, pollID string) (domain.Poll, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	poll, ok := r.polls[pollID]
	return poll, ok, nil
}

func (r *PollRepository) Put(_ context.Context, pollID string, poll domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[pollID] = poll
	return nil
}

type voteKey struct {
	pollID string
	voter  domain.AccountID
}

// VoteRepository is an in-memory vote ledger.
type VoteRepository struct {
	mu    sync.RWMutex
	votes map[voteKey]domain.VoteRecord
}

func NewVoteRepository() *VoteRepository {
	return &VoteRepository{
		votes: make(map[voteKey]domain.VoteRecord),
	}
}

func (r *VoteRepository) Get(_ context.Context, pollID string, voter domain.AccountID) (domain.VoteRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.votes[voteKey{pollID: pollID, voter: voter}]
	return record, ok, nil
}

func (r *VoteRepository) Put(_ context.Context, pollID string, voter domain.AccountID, record domain.VoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[voteKey{pollID: pollID, voter: voter}] = record
	return nil
}

// Journal keeps event envelopes in append order.
type Journal struct {
	mu        sync.RWMutex
	envelopes []domain.Envelope
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Append(_ context.Context, env domain.Envelope) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	env.Topics = append([]string(nil), env.Topics...)
	env.Payload = append([]byte(nil), env.Payload...)
	j.envelopes = append(j.envelopes, env)
	return nil
}

func (j *Journal) Envelopes() []domain.Envelope {
	j.mu.RLock()
	defer j.mu.RUnlock()
	envelopes := make([]domain.Envelope, len(j.envelopes))
	copy(envelopes, j.envelopes)
	return envelopes
}

var (
	_ usecase.PollRepository = (*PollRepository)(nil)
	_ usecase.VoteRepository = (*VoteRepository)(nil)
	_ notify.Journal         = (*Journal)(nil)
)
