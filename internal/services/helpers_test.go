package services

import (
	"github.com/paulexconde/npsdash/internal/models"
)

func row(campaignID string, score int, createdAt string) models.Row {
	return models.Row{
		CampaignID: campaignID,
		Score:      models.NewScore(score),
		CreatedAt:  models.ParseTimestamp(createdAt),
	}
}

func rowNoScore(campaignID string, createdAt string) models.Row {
	return models.Row{
		CampaignID: campaignID,
		Score:      models.NoScore(),
		CreatedAt:  models.ParseTimestamp(createdAt),
	}
}

func withUser(r models.Row, id string) models.Row {
	r.ClientUserID = &id
	return r
}

func withFeedback(r models.Row, raw string) models.Row {
	r.Feedback = models.ParseFeedback(raw)
	return r
}

func userIDs(rows []models.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ClientUser())
	}
	return out
}
