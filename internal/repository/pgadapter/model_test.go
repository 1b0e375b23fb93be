package pgadapter

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPollModel(t *testing.T) {
	poll := domain.Poll{NumberOfOptions: 4, PollStartTimestamp: 1_700_000_000_000, PollEndTimestamp: 1_700_000_600_000}

	row := pollModelFrom("p1", poll)
	assert.Equal(t, "p1", row.PollID)
	assert.Equal(t, poll, row.toPoll())
}

func TestVoteModel(t *testing.T) {
	record := domain.VoteRecord{VotingOption: 1, NumberOfVotes: 250, Withdrawn: true}

	row := voteModelFrom("p1", "alice", record)
	assert.Equal(t, "alice", row.Voter)
	assert.Equal(t, record, row.toVoteRecord())
}

func TestEventModelJoinsTopics(t *testing.T) {
	row := eventModelFrom(domain.Envelope{ID: "e1", Name: domain.EventVoted, Topics: []string{"p1", "alice"}, Timestamp: 9})
	assert.Equal(t, "p1\x1falice", row.Topics)
	assert.Equal(t, int64(9), row.Timestamp)
}

func TestLogErrorClassifiesMissingTables(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := logError(logger, "governance_repo_get_poll_failed",
		fmt.Errorf("select: %w", &pgconn.PgError{Code: "42P01", Message: `relation "governance_polls" does not exist`}),
		"poll_id", "p1",
	)
	assert.ErrorIs(t, err, ErrSchemaMissing)
	assert.Contains(t, buf.String(), "governance_repo_get_poll_failed")
	assert.Contains(t, buf.String(), "poll_id=p1")

	other := logError(logger, "governance_repo_put_vote_failed", &pgconn.PgError{Code: "23505"})
	assert.NotErrorIs(t, other, ErrSchemaMissing)
}
