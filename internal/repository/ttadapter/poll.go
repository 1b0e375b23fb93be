package ttadapter

import (
	"context"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/pkg/errors"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	PollSpace = "polls"
)

type PollRepository struct {
	conn tarantool.Doer
}

func NewPollRepository(conn tarantool.Doer) *PollRepository {
	return &PollRepository{
		conn: conn,
	}
}

func (r *PollRepository) Get(ctx context.Context, pollID string) (domain.Poll, bool, error) {
	var res []PollModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(PollSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Iterator(tarantool.IterEq).
			Key(tarantool.StringKey{S: pollID}),
	).GetTyped(&res); err != nil {
		return domain.Poll{}, false, errors.Wrap(err, "could not select typed poll in tarantool")
	}
	if len(res) == 0 {
		return domain.Poll{}, false, nil
	}
	return res[0].ToPoll(), true, nil
}

func (r *PollRepository) Put(ctx context.Context, pollID string, poll domain.Poll) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(PollSpace).
			Context(ctx).
			Tuple(NewPollModel(pollID, poll)),
	).Get(); err != nil {
		return errors.Wrap(err, "could not replace poll in tarantool")
	}
	return nil
}

var _ usecase.PollRepository = (*PollRepository)(nil)
