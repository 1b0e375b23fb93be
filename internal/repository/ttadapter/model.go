package ttadapter

import (
	"fmt"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// PollModel - tuple of the polls space: {poll_id, number_of_options, start, end}.
type PollModel struct {
	PollID             string
	NumberOfOptions    uint32
	PollStartTimestamp uint64
	PollEndTimestamp   uint64
}

// VoteModel - tuple of the votes space: {poll_id, voter, option, votes, withdrawn}.
type VoteModel struct {
	PollID        string
	Voter         string
	VotingOption  uint32
	NumberOfVotes int64
	Withdrawn     bool
}

// EnvelopeModel - tuple of the events space: {id, name, topics, timestamp, payload}.
type EnvelopeModel struct {
	ID        string
	Name      string
	Topics    []string
	Timestamp uint64
	Payload   []byte
}

const (
	pollModelFields     = 4
	voteModelFields     = 5
	envelopeModelFields = 5
)

func NewPollModel(pollID string, poll domain.Poll) *PollModel {
	return &PollModel{
		PollID:             pollID,
		NumberOfOptions:    poll.NumberOfOptions,
		PollStartTimestamp: uint64(poll.PollStartTimestamp),
		PollEndTimestamp:   uint64(poll.PollEndTimestamp),
	}
}

func (p *PollModel) ToPoll() domain.Poll {
	return domain.Poll{
		NumberOfOptions:    p.NumberOfOptions,
		PollStartTimestamp: domain.Timestamp(p.PollStartTimestamp),
		PollEndTimestamp:   domain.Timestamp(p.PollEndTimestamp),
	}
}

func (p *PollModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(pollModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(p.PollID); err != nil {
		return err
	}
	if err := e.EncodeUint(uint64(p.NumberOfOptions)); err != nil {
		return err
	}
	if err := e.EncodeUint(p.PollStartTimestamp); err != nil {
		return err
	}
	if err := e.EncodeUint(p.PollEndTimestamp); err != nil {
		return err
	}
	return nil
}

func (p *PollModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != pollModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if p.PollID, err = d.DecodeString(); err != nil {
		return err
	}
	if p.NumberOfOptions, err = d.DecodeUint32(); err != nil {
		return err
	}
	if p.PollStartTimestamp, err = d.DecodeUint64(); err != nil {
		return err
	}
	if p.PollEndTimestamp, err = d.DecodeUint64(); err != nil {
		return err
	}
	return nil
}

func NewVoteModel(pollID string, voter domain.AccountID, record domain.VoteRecord) *VoteModel {
	return &VoteModel{
		PollID:        pollID,
		Voter:         string(voter),
		VotingOption:  record.VotingOption,
		NumberOfVotes: int64(record.NumberOfVotes),
		Withdrawn:     record.Withdrawn,
	}
}

func (v *VoteModel) ToVoteRecord() domain.VoteRecord {
	return domain.VoteRecord{
		VotingOption:  v.VotingOption,
		NumberOfVotes: domain.Balance(v.NumberOfVotes),
		Withdrawn:     v.Withdrawn,
	}
}

func (v *VoteModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(voteModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(v.PollID); err != nil {
		return err
	}
	if err := e.EncodeString(v.Voter); err != nil {
		return err
	}
	if err := e.EncodeUint(uint64(v.VotingOption)); err != nil {
		return err
	}
	if err := e.EncodeInt(v.NumberOfVotes); err != nil {
		return err
	}
	if err := e.EncodeBool(v.Withdrawn); err != nil {
		return err
	}
	return nil
}

func (v *VoteModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != voteModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if v.PollID, err = d.DecodeString(); err != nil {
		return err
	}
	if v.Voter, err = d.DecodeString(); err != nil {
		return err
	}
	if v.VotingOption, err = d.DecodeUint32(); err != nil {
		return err
	}
	if v.NumberOfVotes, err = d.DecodeInt64(); err != nil {
		return err
	}
	if v.Withdrawn, err = d.DecodeBool(); err != nil {
		return err
	}
	return nil
}

func NewEnvelopeModel(env domain.Envelope) *EnvelopeModel {
	return &EnvelopeModel{
		ID:        env.ID,
		Name:      env.Name,
		Topics:    env.Topics,
		Timestamp: uint64(env.Timestamp),
		Payload:   env.Payload,
	}
}

func (m *EnvelopeModel) ToEnvelope() domain.Envelope {
	return domain.Envelope{
		ID:        m.ID,
		Name:      m.Name,
		Topics:    m.Topics,
		Timestamp: domain.Timestamp(m.Timestamp),
		Payload:   m.Payload,
	}
}

func (m *EnvelopeModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(envelopeModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(m.ID); err != nil {
		return err
	}
	if err := e.EncodeString(m.Name); err != nil {
		return err
	}
	if err := e.EncodeArrayLen(len(m.Topics)); err != nil {
		return err
	}
	for _, topic := range m.Topics {
		if err := e.EncodeString(topic); err != nil {
			return err
		}
	}
	if err := e.EncodeUint(m.Timestamp); err != nil {
		return err
	}
	if err := e.EncodeBytes(m.Payload); err != nil {
		return err
	}
	return nil
}

func (m *EnvelopeModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != envelopeModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if m.ID, err = d.DecodeString(); err != nil {
		return err
	}
	if m.Name, err = d.DecodeString(); err != nil {
		return err
	}
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	m.Topics = nil
	if l > 0 {
		m.Topics = make([]string, 0, l)
	}
	for i := 0; i < l; i++ {
		topic, err := d.DecodeString()
		if err != nil {
			return err
		}
		m.Topics = append(m.Topics, topic)
	}
	if m.Timestamp, err = d.DecodeUint64(); err != nil {
		return err
	}
	if m.Payload, err = d.DecodeBytes(); err != nil {
		return err
	}
	return nil
}
