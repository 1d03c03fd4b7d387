package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*CampaignCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCampaignCache(client, 10*time.Minute), mr
}

func TestCampaignCache_RoundTrip(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []models.Campaign{
		{CampaignID: "c1", Domain: "e1.ru", ClientID: "cl", StartAt: &start},
		{CampaignID: "c2", Domain: "ngs.ru"},
	}

	_, ok, err := c.Get(ctx, "E1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "E1", want))
	assert.Equal(t, 10*time.Minute, mr.TTL(keyPrefix+"E1"))

	got, ok, err := c.Get(ctx, "E1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "e1.ru", got[0].Domain)
	assert.True(t, start.Equal(*got[0].StartAt))
	assert.Nil(t, got[1].StartAt)

	mr.FastForward(11 * time.Minute)
	_, ok, err = c.Get(ctx, "E1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCampaignCache_InvalidateAndCorrupt(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "E1", []models.Campaign{{CampaignID: "c1"}}))
	require.NoError(t, c.Invalidate(ctx, "E1"))
	_, ok, err := c.Get(ctx, "E1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set(keyPrefix+"bad", "not json"))
	_, _, err = c.Get(ctx, "bad")
	assert.Error(t, err)
}

func TestCampaignCache_Down(t *testing.T) {
	c, mr := setupCache(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	_, _, err := c.Get(context.Background(), "E1")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}
