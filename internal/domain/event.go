package domain

import "strconv"

const (
	EventPollCreated    = "PollCreated"
	EventVoted          = "Voted"
	EventFundsWithdrawn = "FundsWithdrawn"
)

// Event - notification emitted after a successful state change.
type Event interface {
	EventName() string
	// Topics - indexed fields subscribers may filter on.
	Topics() []string
}

type PollCreated struct {
	PollID             string    `msgpack:"poll_id" json:"poll_id"`
	NumberOfOptions    uint32    `msgpack:"number_of_options" json:"number_of_options"`
	PollStartTimestamp Timestamp `msgpack:"poll_start_timestamp" json:"poll_start_timestamp"`
	PollEndTimestamp   Timestamp `msgpack:"poll_end_timestamp" json:"poll_end_timestamp"`
}

func (PollCreated) EventName() string { return EventPollCreated }

func (e PollCreated) Topics() []string {
	return []string{e.PollID, strconv.FormatUint(uint64(e.NumberOfOptions), 10)}
}

// Voted - NumberOfVotes is the weight added by this vote, not the running total.
type Voted struct {
	PollID        string    `msgpack:"poll_id" json:"poll_id"`
	Voter         AccountID `msgpack:"voter" json:"voter"`
	VotingOption  uint32    `msgpack:"voting_option" json:"voting_option"`
	NumberOfVotes Balance   `msgpack:"number_of_votes" json:"number_of_votes"`
}

func (Voted) EventName() string { return EventVoted }

func (e Voted) Topics() []string {
	return []string{e.PollID, string(e.Voter)}
}

type FundsWithdrawn struct {
	Voter  AccountID `msgpack:"voter" json:"voter"`
	Amount Balance   `msgpack:"amount" json:"amount"`
}

func (FundsWithdrawn) EventName() string { return EventFundsWithdrawn }

func (e FundsWithdrawn) Topics() []string {
	return []string{string(e.Voter), strconv.FormatInt(int64(e.Amount), 10)}
}

// Envelope - event prepared for the journal.
type Envelope struct {
	ID        string
	Name      string
	Topics    []string
	Timestamp Timestamp
	// Payload - msgpack encoded event.
	Payload []byte
}
