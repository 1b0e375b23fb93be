package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/mattermost/mattermost-server/v6/model"
)

const (
	pollCreateArgsCount = 4
	pollVoteArgsCount   = 3
)

var errorMessages = []struct {
	err error
	msg string
}{
	{usecase.ErrPollIDAlreadyExists, "A poll with this ID already exists"},
	{usecase.ErrInvalidNumberOfOption, "Invalid option. A poll needs at least 2 options, votes go to options 1..N"},
	{usecase.ErrInvalidStartTimestamp, "Start time must not be in the past"},
	{usecase.ErrInvalidEndTimestamp, "End time must be after start time"},
	{usecase.ErrInvalidNumberOfVotes, "Number of votes must be positive"},
	{usecase.ErrPollIsNotStarted, "Poll is not started yet, you can not vote"},
	{usecase.ErrPollIsFinished, "Poll is finished, you can not vote"},
	{usecase.ErrVoteDenied, "You have already voted for another option in this poll"},
	{usecase.ErrPollDoesNotExist, "There is no poll with such ID. Try again"},
	{usecase.ErrPollIsNotFinished, "Poll is not finished yet, funds can be withdrawn after it ends"},
	{usecase.ErrInvalidVotes, "You have no votes in this poll"},
	{usecase.ErrFundsAlreadyWithdrawn, "Your funds are already withdrawn"},
	{usecase.ErrNotEnoughFunds, "Not enough funds"},
}

func errorMessage(err error) (string, bool) {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}

func (b *PollingBot) respondError(ctx context.Context, post *model.Post, err error, fallback string) {
	if msg, ok := errorMessage(err); ok {
		b.Respond(ctx, post, msg)
		return
	}
	b.logger.Error(fallback, "post_id", post.Id, "error", err.Error())
	b.Respond(ctx, post, fallback+". Try again")
}

func (b *PollingBot) handleCreate(ctx context.Context, post *model.Post, args []string) {
	// /poll_create [pollID] [numberOfOptions] [start] [end]
	if len(args) != pollCreateArgsCount {
		b.Respond(ctx, post, "There must be 4 arguments: poll ID, number of options, start and end time")
		return
	}

	pollID := args[0]
	numberOfOptions, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		b.Respond(ctx, post, "Number of options must be a positive integer")
		return
	}
	start, err := parseTimestamp(args[2])
	if err != nil {
		b.Respond(ctx, post, "Start time must be unix milliseconds or RFC3339")
		return
	}
	end, err := parseTimestamp(args[3])
	if err != nil {
		b.Respond(ctx, post, "End time must be unix milliseconds or RFC3339")
		return
	}

	if err = b.gov.CreatePoll(ctx, pollID, uint32(numberOfOptions), start, end); err != nil {
		b.respondError(ctx, post, err, "Failed to create poll")
		return
	}

	b.Respond(ctx, post, fmt.Sprintf("Poll succesfully created!\nID: %s\nOptions: 1..%d\nOpen from %s to %s",
		pollID, numberOfOptions, formatTimestamp(start), formatTimestamp(end)))
}

func (b *PollingBot) handleVote(ctx context.Context, post *model.Post, args []string) {
	// /poll_vote [pollID] [option] [amount]
	if len(args) != pollVoteArgsCount {
		b.Respond(ctx, post, "There must be 3 arguments: poll ID, option's number and number of votes")
		return
	}

	option, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		b.Respond(ctx, post, "Option must be an integer: option's number")
		return
	}
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		b.Respond(ctx, post, "Number of votes must be an integer")
		return
	}

	if err = b.gov.Vote(ctx, args[0], uint32(option), domain.Balance(amount)); err != nil {
		b.respondError(ctx, post, err, "Failed to vote in this poll")
		return
	}

	b.Respond(ctx, post, "Vote successfully registered")
}

func (b *PollingBot) handleWithdraw(ctx context.Context, post *model.Post, args []string) {
	// /poll_withdraw [pollID]
	if len(args) != 1 {
		b.Respond(ctx, post, "There must be 1 argument: poll ID")
		return
	}

	if err := b.gov.Withdraw(ctx, args[0]); err != nil {
		b.respondError(ctx, post, err, "Failed to withdraw funds")
		return
	}

	b.Respond(ctx, post, "Funds succesfully withdrawn")
}

func (b *PollingBot) handleInfo(ctx context.Context, post *model.Post, args []string) {
	// /poll_info [pollID]
	if len(args) != 1 {
		b.Respond(ctx, post, "There must be 1 argument: poll ID")
		return
	}

	poll, err := b.gov.GetPollInfo(ctx, args[0])
	if err != nil {
		b.respondError(ctx, post, err, "Failed to obtain poll info")
		return
	}

	b.Respond(ctx, post, fmt.Sprintf("Poll %s\nOptions: 1..%d\nOpen from %s to %s",
		args[0], poll.NumberOfOptions, formatTimestamp(poll.PollStartTimestamp), formatTimestamp(poll.PollEndTimestamp)))
}

func (b *PollingBot) handleHelp(ctx context.Context, post *model.Post, _ []string) {
	// /help
	b.Respond(ctx, post, `Available commands:
	* /help - info about commands

	* /poll_create [pollID] [options] [start] [end] - creates a poll with options numbered 1..[options].
	Times are unix milliseconds or RFC3339, e.g. 2026-10-20T12:00:00Z.

	* /poll_vote [pollID] [option] [votes] - adds [votes] to your vote. Your first vote locks the option.

	* /poll_withdraw [pollID] - releases your votes after the poll ends. Works once.

	* /poll_info [pollID] - shows poll's options and schedule.`)
}

func parseTimestamp(s string) (domain.Timestamp, error) {
	if ms, err := strconv.ParseUint(s, 10, 64); err == nil {
		return domain.Timestamp(ms), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return domain.TimestampOf(t), nil
}

func formatTimestamp(ts domain.Timestamp) string {
	return ts.Time().Format(time.RFC3339)
}

func describeEvent(event domain.Event) string {
	switch e := event.(type) {
	case domain.PollCreated:
		return fmt.Sprintf("Poll %s created: options 1..%d, open from %s to %s",
			e.PollID, e.NumberOfOptions, formatTimestamp(e.PollStartTimestamp), formatTimestamp(e.PollEndTimestamp))
	case domain.Voted:
		return fmt.Sprintf("Account %s added %d votes to option %d in poll %s",
			e.Voter, e.NumberOfVotes, e.VotingOption, e.PollID)
	case domain.FundsWithdrawn:
		return fmt.Sprintf("Account %s withdrew %d", e.Voter, e.Amount)
	default:
		return event.EventName()
	}
}
