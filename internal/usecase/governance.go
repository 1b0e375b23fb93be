package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
)

var (
	ErrPollIDAlreadyExists   = errors.New("poll id already exists")
	ErrInvalidNumberOfOption = errors.New("invalid number of option")
	ErrInvalidStartTimestamp = errors.New("invalid start timestamp")
	ErrInvalidEndTimestamp   = errors.New("invalid end timestamp")
	ErrInvalidNumberOfVotes  = errors.New("invalid number of votes")
	ErrPollIsNotStarted      = errors.New("poll is not started")
	ErrPollIsFinished        = errors.New("poll is finished")
	ErrVoteDenied            = errors.New("vote denied")
	ErrPollDoesNotExist      = errors.New("poll does not exist")
	ErrPollIsNotFinished     = errors.New("poll is not finished")
	ErrInvalidVotes          = errors.New("invalid votes")
	ErrFundsAlreadyWithdrawn = errors.New("funds already withdrawn")
	// ErrNotEnoughFunds is reported by the escrow that consumes FundsWithdrawn,
	// never by the rules in this package.
	ErrNotEnoughFunds = errors.New("not enough funds")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrPollIDAlreadyExists, "PollIdAlreadyExists"},
	{ErrInvalidNumberOfOption, "InvalidNumberOfOption"},
	{ErrInvalidStartTimestamp, "InvalidStartTimestamp"},
	{ErrInvalidEndTimestamp, "InvalidEndTimestamp"},
	{ErrInvalidNumberOfVotes, "InvalidNumberOfVotes"},
	{ErrPollIsNotStarted, "PollIsNotStarted"},
	{ErrPollIsFinished, "PollIsFinished"},
	{ErrVoteDenied, "VoteDenied"},
	{ErrPollDoesNotExist, "PollDoesNotExist"},
	{ErrPollIsNotFinished, "PollIsNotFinished"},
	{ErrInvalidVotes, "InvalidVotes"},
	{ErrFundsAlreadyWithdrawn, "FundsAlreadyWithdrawn"},
	{ErrNotEnoughFunds, "NotEnoughFunds"},
}

// Kind returns the name of the governance rule err violates, or an empty string
// when err is not a rule violation (storage failures and the like).
func Kind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

type PollRepository interface {
	Get(ctx context.Context, pollID string) (domain.Poll, bool, error)
	Put(ctx context.Context, pollID string, poll domain.Poll) error
}

type VoteRepository interface {
	Get(ctx context.Context, pollID string, voter domain.AccountID) (domain.VoteRecord, bool, error)
	Put(ctx context.Context, pollID string, voter domain.AccountID, record domain.VoteRecord) error
}

// Host is the environment operations run in: block time, the invoking account
// and the event sink. Events carry the block time the operation validated
// against.
type Host interface {
	BlockTimestamp() domain.Timestamp
	Caller(ctx context.Context) domain.AccountID
	Emit(ctx context.Context, at domain.Timestamp, event domain.Event)
}

// Governance owns the poll and vote rules. Operations are serialized: each one
// reads the clock once, validates, and only then writes a single record.
type Governance struct {
	pollRepo PollRepository
	voteRepo VoteRepository
	host     Host
	logger   *slog.Logger
	mu       sync.Mutex
}

func NewGovernance(pollRepo PollRepository, voteRepo VoteRepository, host Host, logger *slog.Logger) *Governance {
	return &Governance{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		host:     host,
		logger:   ResolveLogger(logger),
	}
}

func (g *Governance) CreatePoll(
	ctx context.Context,
	pollID string,
	numberOfOptions uint32,
	start domain.Timestamp,
	end domain.Timestamp,
) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.host.BlockTimestamp()
	existing, _, err := g.lookupPoll(ctx, pollID)
	if err != nil {
		return err
	}

	if existing.NumberOfOptions != 0 {
		return g.reject("create_poll", pollID, ErrPollIDAlreadyExists)
	}
	if numberOfOptions < 2 {
		return g.reject("create_poll", pollID, ErrInvalidNumberOfOption)
	}
	if start < now {
		return g.reject("create_poll", pollID, ErrInvalidStartTimestamp)
	}
	if end <= start {
		return g.reject("create_poll", pollID, ErrInvalidEndTimestamp)
	}

	poll := domain.NewPoll(numberOfOptions, start, end)
	if err = g.pollRepo.Put(ctx, pollID, *poll); err != nil {
		return fmt.Errorf("could not save poll: %w", err)
	}

	g.host.Emit(ctx, now, domain.PollCreated{
		PollID:             pollID,
		NumberOfOptions:    numberOfOptions,
		PollStartTimestamp: start,
		PollEndTimestamp:   end,
	})
	return nil
}

// Vote adds amount to the caller's weight in the poll. The first vote locks the
// option; later votes must repeat it.
func (g *Governance) Vote(ctx context.Context, pollID string, votingOption uint32, amount domain.Balance) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	voter := g.host.Caller(ctx)
	if amount <= 0 {
		return g.reject("vote", pollID, ErrInvalidNumberOfVotes)
	}

	// An unknown poll is evaluated as the zero poll, which normally ends up
	// as ErrPollIsFinished.
	poll, _, err := g.lookupPoll(ctx, pollID)
	if err != nil {
		return err
	}
	now := g.host.BlockTimestamp()

	if now < poll.PollStartTimestamp {
		return g.reject("vote", pollID, ErrPollIsNotStarted)
	}
	if now > poll.PollEndTimestamp {
		return g.reject("vote", pollID, ErrPollIsFinished)
	}
	if votingOption == domain.NoOption || votingOption > poll.NumberOfOptions {
		return g.reject("vote", pollID, ErrInvalidNumberOfOption)
	}

	record, _, err := g.voteRepo.Get(ctx, pollID, voter)
	if err != nil {
		return fmt.Errorf("could not retrieve vote: %w", err)
	}

	if record.VotingOption == domain.NoOption {
		record.VotingOption = votingOption
	} else if record.VotingOption != votingOption {
		return g.reject("vote", pollID, ErrVoteDenied)
	}

	if record.NumberOfVotes > math.MaxInt64-amount {
		return g.reject("vote", pollID, ErrInvalidNumberOfVotes)
	}
	record.NumberOfVotes += amount

	if err = g.voteRepo.Put(ctx, pollID, voter, record); err != nil {
		return fmt.Errorf("could not save vote: %w", err)
	}

	g.host.Emit(ctx, now, domain.Voted{
		PollID:        pollID,
		Voter:         voter,
		VotingOption:  votingOption,
		NumberOfVotes: amount,
	})
	return nil
}

// Withdraw marks the caller's weight in a finished poll as released. It moves
// no funds; the emitted FundsWithdrawn event does.
func (g *Governance) Withdraw(ctx context.Context, pollID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	voter := g.host.Caller(ctx)
	poll, found, err := g.lookupPoll(ctx, pollID)
	if err != nil {
		return err
	}
	now := g.host.BlockTimestamp()

	if !found || poll.NumberOfOptions == 0 {
		return g.reject("withdraw", pollID, ErrPollDoesNotExist)
	}
	if now < poll.PollEndTimestamp {
		return g.reject("withdraw", pollID, ErrPollIsNotFinished)
	}

	record, _, err := g.voteRepo.Get(ctx, pollID, voter)
	if err != nil {
		return fmt.Errorf("could not retrieve vote: %w", err)
	}

	if record.NumberOfVotes == 0 {
		return g.reject("withdraw", pollID, ErrInvalidVotes)
	}
	if record.Withdrawn {
		return g.reject("withdraw", pollID, ErrFundsAlreadyWithdrawn)
	}

	record.Withdrawn = true
	if err = g.voteRepo.Put(ctx, pollID, voter, record); err != nil {
		return fmt.Errorf("could not save vote: %w", err)
	}

	g.host.Emit(ctx, now, domain.FundsWithdrawn{
		Voter:  voter,
		Amount: record.NumberOfVotes,
	})
	return nil
}

func (g *Governance) GetPollInfo(ctx context.Context, pollID string) (domain.Poll, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	poll, found, err := g.lookupPoll(ctx, pollID)
	if err != nil {
		return domain.Poll{}, err
	}
	if !found || poll.NumberOfOptions == 0 {
		return domain.Poll{}, g.reject("get_poll_info", pollID, ErrPollDoesNotExist)
	}
	return poll, nil
}

func (g *Governance) lookupPoll(ctx context.Context, pollID string) (domain.Poll, bool, error) {
	poll, found, err := g.pollRepo.Get(ctx, pollID)
	if err != nil {
		g.logger.Error("poll lookup failed", "poll_id", pollID, "error", err.Error())
		return domain.Poll{}, false, fmt.Errorf("could not retrieve poll: %w", err)
	}
	if !found {
		return domain.Poll{}, false, nil
	}
	return poll, true, nil
}

func (g *Governance) reject(op string, pollID string, err error) error {
	g.logger.Debug("governance operation rejected", "op", op, "poll_id", pollID, "reason", Kind(err))
	return err
}
