package models

import "time"

// Row is one survey response as read from nps.survey.
type Row struct {
	ClientUserID *string   `db:"client_user_id" json:"client_user_id"`
	CampaignID   string    `db:"campaign_id" json:"campaign_id"`
	Score        Score     `db:"score" json:"score"`
	Feedback     Feedback  `db:"feedback" json:"feedback"`
	CreatedAt    Timestamp `db:"created_at" json:"created_at"`
}

// ClientUser returns the client user id, "" when absent.
func (r Row) ClientUser() string {
	if r.ClientUserID == nil {
		return ""
	}
	return *r.ClientUserID
}

// Campaign is the metadata of one campaign as read from nps.campaign.
type Campaign struct {
	CampaignID string     `db:"campaign_id" json:"campaign_id"`
	Domain     string     `db:"domain" json:"domain"`
	ClientID   string     `db:"client_id" json:"client_id"`
	StartAt    *time.Time `db:"start_at" json:"start_at"`
	EndAt      *time.Time `db:"end_at" json:"end_at"`
}

// Projects maps a project name to its campaign ids.
type Projects map[string][]string
