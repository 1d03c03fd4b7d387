package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "npsdash:campaigns:"

// CampaignCache keeps the campaign metadata of a project in Redis as JSON.
type CampaignCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCampaignCache(client *redis.Client, ttl time.Duration) *CampaignCache {
	return &CampaignCache{client: client, ttl: ttl}
}

func key(project string) string {
	return keyPrefix + project
}

// Get reports false without an error on a miss.
func (c *CampaignCache) Get(ctx context.Context, project string) ([]models.Campaign, bool, error) {
	data, err := c.client.Get(ctx, key(project)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", project, err)
	}

	var campaigns []models.Campaign
	if err := json.Unmarshal(data, &campaigns); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", project, err)
	}
	return campaigns, true, nil
}

func (c *CampaignCache) Set(ctx context.Context, project string, campaigns []models.Campaign) error {
	data, err := json.Marshal(campaigns)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", project, err)
	}
	if err := c.client.Set(ctx, key(project), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", project, err)
	}
	return nil
}

func (c *CampaignCache) Invalidate(ctx context.Context, project string) error {
	return c.client.Del(ctx, key(project)).Err()
}

func (c *CampaignCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
