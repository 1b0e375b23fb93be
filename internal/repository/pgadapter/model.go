package pgadapter

import (
	"strings"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
)

type pollModel struct {
	PollID             string `gorm:"column:poll_id;primaryKey"`
	NumberOfOptions    int64  `gorm:"column:number_of_options;not null"`
	PollStartTimestamp int64  `gorm:"column:poll_start_timestamp;not null"`
	PollEndTimestamp   int64  `gorm:"column:poll_end_timestamp;not null"`
}

func (pollModel) TableName() string {
	return "governance_polls"
}

func pollModelFrom(pollID string, poll domain.Poll) pollModel {
	return pollModel{
		PollID:             pollID,
		NumberOfOptions:    int64(poll.NumberOfOptions),
		PollStartTimestamp: int64(poll.PollStartTimestamp),
		PollEndTimestamp:   int64(poll.PollEndTimestamp),
	}
}

func (m pollModel) toPoll() domain.Poll {
	return domain.Poll{
		NumberOfOptions:    uint32(m.NumberOfOptions),
		PollStartTimestamp: domain.Timestamp(m.PollStartTimestamp),
		PollEndTimestamp:   domain.Timestamp(m.PollEndTimestamp),
	}
}

type voteModel struct {
	PollID        string `gorm:"column:poll_id;primaryKey"`
	Voter         string `gorm:"column:voter;primaryKey"`
	VotingOption  int64  `gorm:"column:voting_option;not null"`
	NumberOfVotes int64  `gorm:"column:number_of_votes;not null"`
	Withdrawn     bool   `gorm:"column:withdrawn;not null"`
}

func (voteModel) TableName() string {
	return "governance_votes"
}

func voteModelFrom(pollID string, voter domain.AccountID, record domain.VoteRecord) voteModel {
	return voteModel{
		PollID:        pollID,
		Voter:         string(voter),
		VotingOption:  int64(record.VotingOption),
		NumberOfVotes: int64(record.NumberOfVotes),
		Withdrawn:     record.Withdrawn,
	}
}

func (m voteModel) toVoteRecord() domain.VoteRecord {
	return domain.VoteRecord{
		VotingOption:  uint32(m.VotingOption),
		NumberOfVotes: domain.Balance(m.NumberOfVotes),
		Withdrawn:     m.Withdrawn,
	}
}

type eventModel struct {
	EventID    string    `gorm:"column:event_id;primaryKey"`
	Name       string    `gorm:"column:name;index"`
	Topics     string    `gorm:"column:topics"`
	Timestamp  int64     `gorm:"column:block_timestamp;index"`
	Payload    []byte    `gorm:"column:payload"`
	RecordedAt time.Time `gorm:"column:recorded_at;autoCreateTime"`
}

func (eventModel) TableName() string {
	return "governance_events"
}

// topicSeparator joins topics into one column; it cannot occur in ids or numbers.
const topicSeparator = "\x1f"

func eventModelFrom(env domain.Envelope) eventModel {
	return eventModel{
		EventID:   env.ID,
		Name:      env.Name,
		Topics:    strings.Join(env.Topics, topicSeparator),
		Timestamp: int64(env.Timestamp),
		Payload:   env.Payload,
	}
}
