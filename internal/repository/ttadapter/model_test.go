package ttadapter

import (
	"testing"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestPollModelTuple(t *testing.T) {
	poll := domain.Poll{NumberOfOptions: 3, PollStartTimestamp: 1_700_000_000_010, PollEndTimestamp: 1_700_000_000_020}

	raw, err := msgpack.Marshal(NewPollModel("p1", poll))
	require.NoError(t, err)

	// Tuples are plain arrays so that space indexes can address fields.
	var tuple []interface{}
	require.NoError(t, msgpack.Unmarshal(raw, &tuple))
	assert.Len(t, tuple, pollModelFields)
	assert.Equal(t, "p1", tuple[0])

	var decoded PollModel
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Equal(t, "p1", decoded.PollID)
	assert.Equal(t, poll, decoded.ToPoll())
}

func TestVoteModelTuple(t *testing.T) {
	record := domain.VoteRecord{VotingOption: 2, NumberOfVotes: 100, Withdrawn: true}

	raw, err := msgpack.Marshal(NewVoteModel("p1", "alice", record))
	require.NoError(t, err)

	var decoded VoteModel
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Equal(t, "p1", decoded.PollID)
	assert.Equal(t, "alice", decoded.Voter)
	assert.Equal(t, record, decoded.ToVoteRecord())
}

func TestEnvelopeModelTuple(t *testing.T) {
	env := domain.Envelope{
		ID:        "0b5f3c1e-4e55-4b6b-9a52-1d1f0e8a6c11",
		Name:      domain.EventFundsWithdrawn,
		Topics:    []string{"alice", "100"},
		Timestamp: 42,
		Payload:   []byte{0x81, 0xa1, 0x61, 0x01},
	}

	raw, err := msgpack.Marshal(NewEnvelopeModel(env))
	require.NoError(t, err)

	var decoded EnvelopeModel
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Equal(t, env, decoded.ToEnvelope())
}

func TestDecodeRejectsForeignTuple(t *testing.T) {
	raw, err := msgpack.Marshal([]interface{}{"p1", 3})
	require.NoError(t, err)

	var poll PollModel
	assert.Error(t, msgpack.Unmarshal(raw, &poll))

	var vote VoteModel
	assert.Error(t, msgpack.Unmarshal(raw, &vote))
}

func TestEnvelopeModelWithoutTopics(t *testing.T) {
	env := domain.Envelope{ID: "e1", Name: domain.EventPollCreated, Timestamp: 42, Payload: []byte{0x80}}

	raw, err := msgpack.Marshal(NewEnvelopeModel(env))
	require.NoError(t, err)

	var decoded EnvelopeModel
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.Topics)
	assert.Equal(t, env, decoded.ToEnvelope())

	// A nil topics field written by another client decodes as nil too.
	raw, err = msgpack.Marshal([]interface{}{"e2", domain.EventVoted, nil, uint64(7), []byte{0x80}})
	require.NoError(t, err)

	decoded = EnvelopeModel{Topics: []string{"stale"}}
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded.Topics)
	assert.Equal(t, "e2", decoded.ID)
}
