package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Encode wraps event into an envelope with a fresh id and a msgpack payload.
func Encode(event domain.Event, at domain.Timestamp) (domain.Envelope, error) {
	payload, err := msgpack.Marshal(event)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("could not encode %s: %w", event.EventName(), err)
	}
	return domain.Envelope{
		ID:        uuid.NewString(),
		Name:      event.EventName(),
		Topics:    event.Topics(),
		Timestamp: at,
		Payload:   payload,
	}, nil
}

// Decode restores the event stored in an envelope.
func Decode(env domain.Envelope) (domain.Event, error) {
	var event domain.Event
	switch env.Name {
	case domain.EventPollCreated:
		event = &domain.PollCreated{}
	case domain.EventVoted:
		event = &domain.Voted{}
	case domain.EventFundsWithdrawn:
		event = &domain.FundsWithdrawn{}
	default:
		return nil, fmt.Errorf("unknown event %q", env.Name)
	}
	if err := msgpack.Unmarshal(env.Payload, event); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", env.Name, err)
	}
	return event, nil
}

// LogSink writes every event to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, at domain.Timestamp, event domain.Event) {
	s.logger.InfoContext(ctx, "event emitted",
		"event", event.EventName(),
		"at", uint64(at),
		"topics", event.Topics(),
		"data", event,
	)
}

type Journal interface {
	Append(ctx context.Context, env domain.Envelope) error
}

// JournalSink persists events so that the escrow side can release funds.
// Envelopes are stamped with the block timestamp of the emitting operation.
type JournalSink struct {
	journal Journal
	logger  *slog.Logger
}

func NewJournalSink(journal Journal, logger *slog.Logger) *JournalSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalSink{
		journal: journal,
		logger:  logger,
	}
}

func (s *JournalSink) Emit(ctx context.Context, at domain.Timestamp, event domain.Event) {
	env, err := Encode(event, at)
	if err != nil {
		s.logger.ErrorContext(ctx, "could not encode event", "event", event.EventName(), "error", err.Error())
		return
	}
	if err = s.journal.Append(ctx, env); err != nil {
		s.logger.ErrorContext(ctx, "could not append event to journal",
			"event", env.Name,
			"event_id", env.ID,
			"error", err.Error(),
		)
	}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
	stamps []domain.Timestamp
}

func (r *Recorder) Emit(_ context.Context, at domain.Timestamp, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.stamps = append(r.stamps, at)
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]domain.Event, len(r.events))
	copy(events, r.events)
	return events
}

// Stamps returns the block timestamps of the recorded events, in order.
func (r *Recorder) Stamps() []domain.Timestamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamps := make([]domain.Timestamp, len(r.stamps))
	copy(stamps, r.stamps)
	return stamps
}

// Last returns the most recent event, or nil.
func (r *Recorder) Last() domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

var (
	_ host.Sink = (*LogSink)(nil)
	_ host.Sink = (*JournalSink)(nil)
	_ host.Sink = (*Recorder)(nil)
)
