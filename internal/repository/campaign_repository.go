package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/store"
	"go.uber.org/zap"
)

// nullable text columns are folded to '' so they scan into plain strings
const campaignQuery = `SELECT campaign_id, COALESCE(domain, '') AS domain, COALESCE(client_id::text, '') AS client_id, start_at, end_at
FROM nps.campaign
WHERE campaign_id = ANY($1)`

type CampaignRepository struct {
	store  store.Datastorer[models.Campaign]
	logger *zap.Logger
}

func NewCampaignRepository(db *sqlx.DB, logger *zap.Logger) *CampaignRepository {
	return &CampaignRepository{
		store:  store.NewDataStore[models.Campaign](db, "nps.campaign"),
		logger: logger,
	}
}

// ByIDs returns the metadata of the given campaigns in the order of ids.
// Ids unknown to the database are skipped.
func (r *CampaignRepository) ByIDs(ctx context.Context, ids []string) ([]models.Campaign, error) {
	if len(ids) == 0 {
		return nil, ErrNoCampaigns
	}

	found, err := r.store.Select(ctx, campaignQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select campaigns: %w", err)
	}

	byID := make(map[string]models.Campaign, len(found))
	for _, c := range found {
		byID[c.CampaignID] = c
	}

	out := make([]models.Campaign, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}

	if missing := len(ids) - len(out); missing > 0 {
		r.logger.Warn("Campaigns missing from nps.campaign", zap.Int("missing", missing))
	}
	return out, nil
}
