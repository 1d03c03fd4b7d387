package services

import (
	"context"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/pkg/fault"
	"go.uber.org/zap"
)

// RowSource is where survey rows come from.
type RowSource interface {
	Rows(ctx context.Context, campaignIDs []string, since *time.Time) ([]models.Row, error)
}

// Handles fetching the rows behind the dashboard.
type SurveyService interface {
	// Fetch resolves sel and returns the matching rows, newest first,
	// narrowed by the filter expression when one is given.
	Fetch(ctx context.Context, sel Selection, filter string) ([]models.Row, error)
	Catalog() *Catalog
}

type surveyServiceImpl struct {
	catalog *Catalog
	rows    RowSource
	logger  *zap.Logger
}

// Instantiate the SurveyService.
func NewSurveyService(catalog *Catalog, rows RowSource, logger *zap.Logger) SurveyService {
	return &surveyServiceImpl{catalog: catalog, rows: rows, logger: logger}
}

func (s *surveyServiceImpl) Catalog() *Catalog {
	return s.catalog
}

func (s *surveyServiceImpl) Fetch(ctx context.Context, sel Selection, filter string) ([]models.Row, error) {
	// both validations run before any query is sent
	f, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}
	q, err := s.catalog.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	rows, err := s.rows.Rows(ctx, q.CampaignIDs, q.Since)
	if err != nil {
		return nil, fault.NewInternalError("fetch survey rows", err)
	}

	if !f.IsZero() {
		before := len(rows)
		rows = f.Apply(rows)
		s.logger.Debug("Filter applied",
			zap.String("filter", f.String()),
			zap.Int("before", before),
			zap.Int("after", len(rows)))
	}
	return rows, nil
}
