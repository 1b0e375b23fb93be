package ttadapter

import (
	"context"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/notify"
	"github.com/pkg/errors"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	EventSpace = "events"
)

// Journal appends event envelopes to the events space.
type Journal struct {
	conn tarantool.Doer
}

func NewJournal(conn tarantool.Doer) *Journal {
	return &Journal{
		conn: conn,
	}
}

func (j *Journal) Append(ctx context.Context, env domain.Envelope) error {
	if _, err := j.conn.Do(
		tarantool.NewInsertRequest(EventSpace).
			Context(ctx).
			Tuple(NewEnvelopeModel(env)),
	).Get(); err != nil {
		return errors.Wrapf(err, "could not insert event %s in tarantool", env.ID)
	}
	return nil
}

var _ notify.Journal = (*Journal)(nil)
