package services

import (
	"context"
	"testing"
	"time"

	"github.com/paulexconde/npsdash/internal/pkg/workerpool"
	"github.com/paulexconde/npsdash/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var plus7 = time.FixedZone("+07", 7*3600)

func TestCatalog_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		want    []string
		since   string
		wantErr string
	}{
		{name: "whole project", sel: Selection{Project: "E1"}, want: []string{"c1", "c2", "c3"}},
		{name: "narrowed campaigns keep project order", sel: Selection{Project: "E1", CampaignIDs: []string{"c3", "c1"}}, want: []string{"c1", "c3"}},
		{name: "domain is case insensitive", sel: Selection{Project: "E1", Domain: "e1.ru"}, want: []string{"c1", "c3"}},
		{name: "date at local midnight", sel: Selection{Project: "NGS22", Date: "2025-01-05"}, want: []string{"n1"}, since: "2025-01-04T17:00:00Z"},
		{name: "no project", sel: Selection{}, wantErr: "project is required"},
		{name: "unknown project", sel: Selection{Project: "E2"}, wantErr: `unknown project "E2"`},
		{name: "foreign campaign", sel: Selection{Project: "E1", CampaignIDs: []string{"n1"}}, wantErr: `campaign "n1" does not belong to project "E1"`},
		{name: "empty domain match", sel: Selection{Project: "NGS22", Domain: "e1.ru"}, wantErr: "no campaign matches the selection"},
		{name: "bad date", sel: Selection{Project: "E1", Date: "05.01.2025"}, wantErr: "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog(testProjects(), testCampaigns(), nil, plus7, zap.NewNop())
			q, err := c.Resolve(context.Background(), tt.sel)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, fault.IsClientError(err), "expected a client error, got %v", err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.CampaignIDs)
			if tt.since == "" {
				assert.Nil(t, q.Since)
				return
			}
			require.NotNil(t, q.Since)
			assert.Equal(t, tt.since, q.Since.UTC().Format(time.RFC3339))
		})
	}
}

func TestCatalog_ResolveDoesNotMutateConfig(t *testing.T) {
	projects := testProjects()
	c := NewCatalog(projects, testCampaigns(), nil, plus7, zap.NewNop())

	_, err := c.Resolve(context.Background(), Selection{Project: "E1", CampaignIDs: []string{"c2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, projects["E1"])

	got := c.Projects()
	got["E1"][0] = "changed"
	assert.Equal(t, "c1", projects["E1"][0])
}

func TestCatalog_CampaignsCacheAside(t *testing.T) {
	source := testCampaigns()
	cache := &fakeCache{}
	c := NewCatalog(testProjects(), source, cache, plus7, zap.NewNop())

	for range 3 {
		got, err := c.Campaigns(context.Background(), "E1")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	}
	assert.Equal(t, 1, source.calls)
	assert.Len(t, cache.entries["E1"], 3)
}

func TestCatalog_CampaignsCacheDown(t *testing.T) {
	source := testCampaigns()
	c := NewCatalog(testProjects(), source, &fakeCache{getErr: errDB}, plus7, zap.NewNop())

	got, err := c.Campaigns(context.Background(), "NGS22")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, source.calls)
}

func TestCatalog_CampaignsSourceError(t *testing.T) {
	c := NewCatalog(testProjects(), &fakeCampaigns{err: errDB}, nil, plus7, zap.NewNop())

	_, err := c.Campaigns(context.Background(), "E1")
	assert.True(t, fault.IsInternalError(err))
	assert.ErrorIs(t, err, errDB)

	_, err = c.Resolve(context.Background(), Selection{Project: "E1", Domain: "e1.ru"})
	assert.True(t, fault.IsInternalError(err))
}

func TestCatalog_Warm(t *testing.T) {
	source := testCampaigns()
	cache := &fakeCache{}
	c := NewCatalog(testProjects(), source, cache, plus7, zap.NewNop())

	pool := workerpool.NewWorkerPool(context.Background(), 1, 1, zap.NewNop())
	require.True(t, c.Warm(context.Background(), pool))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Len(t, cache.entries, 2)

	assert.False(t, NewCatalog(testProjects(), source, nil, plus7, zap.NewNop()).Warm(context.Background(), pool))
}

func TestCatalog_ProjectNames(t *testing.T) {
	c := NewCatalog(testProjects(), nil, nil, nil, zap.NewNop())
	assert.Equal(t, []string{"E1", "NGS22"}, c.ProjectNames())
	assert.Equal(t, time.Local, c.Location())
}
