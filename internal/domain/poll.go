package domain

import "time"

// Timestamp - block time in milliseconds since the Unix epoch.
type Timestamp uint64

// Balance - amount of native tokens, used as vote weight.
type Balance int64

// AccountID - stable identifier of the invoking principal.
type AccountID string

// NoOption - voting option of a voter who has not voted yet. Valid options start from 1.
const NoOption uint32 = 0

// Poll - structure for storing poll's schedule and options count.
type Poll struct {
	NumberOfOptions    uint32
	PollStartTimestamp Timestamp
	PollEndTimestamp   Timestamp
}

// VoteRecord - structure for connecting the voter and his weighted vote in the poll.
type VoteRecord struct {
	// VotingOption - option number, NoOption until the first vote.
	VotingOption  uint32
	NumberOfVotes Balance
	// Withdrawn - voter's funds were released after the poll end.
	Withdrawn bool
}

func NewPoll(numberOfOptions uint32, start, end Timestamp) *Poll {
	return &Poll{
		NumberOfOptions:    numberOfOptions,
		PollStartTimestamp: start,
		PollEndTimestamp:   end,
	}
}

// TimestampOf converts wall clock time to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return Timestamp(ms)
}

// Time converts a Timestamp back to wall clock time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}
