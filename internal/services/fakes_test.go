package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
)

type fakeCampaigns struct {
	mu        sync.Mutex
	campaigns map[string]models.Campaign
	calls     int
	err       error
}

func (f *fakeCampaigns) ByIDs(ctx context.Context, ids []string) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Campaign
	for _, id := range ids {
		if c, ok := f.campaigns[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]models.Campaign
	getErr  error
}

func (f *fakeCache) Get(ctx context.Context, project string) ([]models.Campaign, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	c, ok := f.entries[project]
	return c, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, project string, campaigns []models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[string][]models.Campaign)
	}
	f.entries[project] = campaigns
	return nil
}

type fakeRows struct {
	rows  []models.Row
	err   error
	calls int
	ids   []string
	since *time.Time
}

func (f *fakeRows) Rows(ctx context.Context, campaignIDs []string, since *time.Time) ([]models.Row, error) {
	f.calls++
	f.ids = campaignIDs
	f.since = since
	return f.rows, f.err
}

var errDB = errors.New("connection refused")

func testProjects() models.Projects {
	return models.Projects{
		"E1":    {"c1", "c2", "c3"},
		"NGS22": {"n1"},
	}
}

func testCampaigns() *fakeCampaigns {
	return &fakeCampaigns{campaigns: map[string]models.Campaign{
		"c1": {CampaignID: "c1", Domain: "e1.ru"},
		"c2": {CampaignID: "c2", Domain: "m.e1.ru"},
		"c3": {CampaignID: "c3", Domain: "E1.ru"},
		"n1": {CampaignID: "n1", Domain: "ngs22.ru"},
	}}
}
