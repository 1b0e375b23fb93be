package ttadapter

import (
	"context"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/pkg/errors"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	VoteSpace = "votes"
)

type VoteRepository struct {
	conn tarantool.Doer
}

func NewVoteRepository(conn tarantool.Doer) *VoteRepository {
	return &VoteRepository{
		conn: conn,
	}
}

func (r *VoteRepository) Get(ctx context.Context, pollID string, voter domain.AccountID) (domain.VoteRecord, bool, error) {
	var res []VoteModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(VoteSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Iterator(tarantool.IterEq).
			Key([]interface{}{pollID, string(voter)}),
	).GetTyped(&res); err != nil {
		return domain.VoteRecord{}, false, errors.Wrap(err, "could not select typed vote in tarantool")
	}
	if len(res) == 0 {
		return domain.VoteRecord{}, false, nil
	}
	return res[0].ToVoteRecord(), true, nil
}

func (r *VoteRepository) Put(ctx context.Context, pollID string, voter domain.AccountID, record domain.VoteRecord) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(VoteSpace).
			Context(ctx).
			Tuple(NewVoteModel(pollID, voter, record)),
	).Get(); err != nil {
		return errors.Wrap(err, "could not replace vote in tarantool")
	}
	return nil
}

var _ usecase.VoteRepository = (*VoteRepository)(nil)
