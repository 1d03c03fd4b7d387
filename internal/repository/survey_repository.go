package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/store"
	"go.uber.org/zap"
)

const surveyTable = "nps.survey"

// SurveyRepository reads survey responses.
type SurveyRepository struct {
	store  store.Datastorer[models.Row]
	logger *zap.Logger
}

func NewSurveyRepository(db *sqlx.DB, logger *zap.Logger) *SurveyRepository {
	return &SurveyRepository{
		store:  store.NewDataStore[models.Row](db, surveyTable),
		logger: logger,
	}
}

// Rows returns every response of the given campaigns, newest first. A
// non-nil since keeps only responses created at or after it.
func (r *SurveyRepository) Rows(ctx context.Context, campaignIDs []string, since *time.Time) ([]models.Row, error) {
	if len(campaignIDs) == 0 {
		return nil, ErrNoCampaigns
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE campaign_id = ANY($1)", r.store.Columns(), r.store.Table())
	args := []any{pq.Array(campaignIDs)}
	if since != nil {
		query += " AND created_at >= $2"
		args = append(args, *since)
	}
	query += " ORDER BY created_at DESC"

	r.logger.Debug("Executing survey query",
		zap.String("query", query),
		zap.Strings("campaign_ids", campaignIDs),
		zap.Timep("since", since))

	rows, err := r.store.Select(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select survey rows: %w", err)
	}

	r.logger.Info("Survey rows found", zap.Int("count", len(rows)), zap.Int("campaigns", len(campaignIDs)))
	return rows, nil
}

// Now asks the database for its clock, used as a connectivity probe.
func (r *SurveyRepository) Now(ctx context.Context) (time.Time, error) {
	v, err := r.store.QueryRow(ctx, "SELECT NOW()")
	if err != nil {
		return time.Time{}, fmt.Errorf("select now: %w", err)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("select now: unexpected type %T", v)
	}
	return t, nil
}

func (r *SurveyRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
