package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var surveyColumns = []string{"client_user_id", "campaign_id", "score", "feedback", "created_at"}

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestSurveyRepository_Rows(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT client_user_id, campaign_id, score, feedback, created_at FROM nps.survey WHERE campaign_id = ANY($1) ORDER BY created_at DESC")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(surveyColumns).
			AddRow("u1", "c1", int64(9), []byte(`{"text":"great"}`), created).
			AddRow(nil, "c2", nil, nil, created))

	repo := NewSurveyRepository(db, zap.NewNop())
	rows, err := repo.Rows(context.Background(), []string{"c1", "c2"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "u1", rows[0].ClientUser())
	score, ok := rows[0].Score.Int()
	assert.True(t, ok)
	assert.Equal(t, 9, score)
	assert.Equal(t, models.Structured, rows[0].Feedback.Kind())
	got, ok := rows[0].CreatedAt.Time()
	assert.True(t, ok)
	assert.True(t, created.Equal(got))

	assert.Nil(t, rows[1].ClientUserID)
	assert.False(t, rows[1].Score.Valid())
	assert.True(t, rows[1].Feedback.IsEmpty())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyRepository_RowsSince(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("+07", 7*3600))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE campaign_id = ANY($1) AND created_at >= $2 ORDER BY created_at DESC")).
		WithArgs(sqlmock.AnyArg(), since).
		WillReturnRows(sqlmock.NewRows(surveyColumns))

	rows, err := NewSurveyRepository(db, zap.NewNop()).Rows(context.Background(), []string{"c1"}, &since)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSurveyRepository_RowsErrors(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSurveyRepository(db, zap.NewNop())

	_, err := repo.Rows(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoCampaigns)

	mock.ExpectQuery("SELECT").WillReturnError(context.DeadlineExceeded)
	_, err = repo.Rows(context.Background(), []string{"c1"}, nil)
	assert.ErrorIs(t, err, fault.ErrQueryCanceled)
}

func TestSurveyRepository_Now(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT NOW()")).
		WillReturnRows(sqlmock.NewRows([]string{"now"}).AddRow(now))

	got, err := NewSurveyRepository(db, zap.NewNop()).Now(context.Background())
	require.NoError(t, err)
	assert.True(t, now.Equal(got))

	mock.ExpectQuery("SELECT NOW").WillReturnError(errors.New("connection refused"))
	_, err = NewSurveyRepository(db, zap.NewNop()).Now(context.Background())
	assert.Error(t, err)
}

func TestCampaignRepository_ByIDs(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM nps.campaign\nWHERE campaign_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"campaign_id", "domain", "client_id", "start_at", "end_at"}).
			AddRow("c2", "ngs.ru", "cl-2", start, nil).
			AddRow("c1", "e1.ru", "cl-1", nil, nil))

	got, err := NewCampaignRepository(db, zap.NewNop()).ByIDs(context.Background(), []string{"c1", "c2", "c3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CampaignID)
	assert.Equal(t, "e1.ru", got[0].Domain)
	assert.Nil(t, got[0].StartAt)
	assert.Equal(t, "c2", got[1].CampaignID)
	require.NotNil(t, got[1].StartAt)
	assert.True(t, start.Equal(*got[1].StartAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
