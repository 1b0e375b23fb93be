package pgadapter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/notify"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSchemaMissing is returned when the governance tables were never migrated.
var ErrSchemaMissing = errors.New("governance schema is missing, run migrate")

type PollRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPollRepository(db *gorm.DB, logger *slog.Logger) *PollRepository {
	return &PollRepository{
		db:     db,
		logger: usecase.ResolveLogger(logger),
	}
}

func (r *PollRepository) Get(ctx context.Context, pollID string) (domain.Poll, bool, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Poll{}, false, nil
		}
		return domain.Poll{}, false, logError(r.logger, "governance_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return row.toPoll(), true, nil
}

func (r *PollRepository) Put(ctx context.Context, pollID string, poll domain.Poll) error {
	row := pollModelFrom(pollID, poll)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "poll_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return logError(r.logger, "governance_repo_put_poll_failed", err, "poll_id", pollID)
	}
	return nil
}

type VoteRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewVoteRepository(db *gorm.DB, logger *slog.Logger) *VoteRepository {
	return &VoteRepository{
		db:     db,
		logger: usecase.ResolveLogger(logger),
	}
}

func (r *VoteRepository) Get(ctx context.Context, pollID string, voter domain.AccountID) (domain.VoteRecord, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Where("voter = ?", string(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.VoteRecord{}, false, nil
		}
		return domain.VoteRecord{}, false, logError(r.logger, "governance_repo_get_vote_failed", err,
			"poll_id", pollID,
			"voter", string(voter),
		)
	}
	return row.toVoteRecord(), true, nil
}

func (r *VoteRepository) Put(ctx context.Context, pollID string, voter domain.AccountID, record domain.VoteRecord) error {
	row := voteModelFrom(pollID, voter, record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "poll_id"}, {Name: "voter"}},
		DoUpdates: clause.Assignments(map[string]any{
			"voting_option":   row.VotingOption,
			"number_of_votes": row.NumberOfVotes,
			"withdrawn":       row.Withdrawn,
		}),
	}).Create(&row).Error
	if err != nil {
		return logError(r.logger, "governance_repo_put_vote_failed", err,
			"poll_id", pollID,
			"voter", string(voter),
		)
	}
	return nil
}

// Journal appends event envelopes to governance_events.
type Journal struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewJournal(db *gorm.DB, logger *slog.Logger) *Journal {
	return &Journal{
		db:     db,
		logger: usecase.ResolveLogger(logger),
	}
}

func (j *Journal) Append(ctx context.Context, env domain.Envelope) error {
	row := eventModelFrom(env)
	if err := j.db.WithContext(ctx).Create(&row).Error; err != nil {
		return logError(j.logger, "governance_repo_append_event_failed", err,
			"event_id", env.ID,
			"event", env.Name,
		)
	}
	return nil
}

func logError(logger *slog.Logger, event string, err error, attrs ...any) error {
	if isUndefinedTable(err) {
		err = pkgerrors.WithStack(ErrSchemaMissing)
	} else {
		err = pkgerrors.WithStack(err)
	}
	logger.Error("governance repository operation failed",
		append([]any{"event", event, "error", err.Error()}, attrs...)...,
	)
	return err
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var (
	_ usecase.PollRepository = (*PollRepository)(nil)
	_ usecase.VoteRepository = (*VoteRepository)(nil)
	_ notify.Journal         = (*Journal)(nil)
)
