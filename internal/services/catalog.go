package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/pkg/workerpool"
	"github.com/paulexconde/npsdash/pkg/fault"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

// Selection is what the user picked in the filter bar.
type Selection struct {
	Project     string   `json:"project"`
	Domain      string   `json:"domain,omitempty"`
	CampaignIDs []string `json:"campaignIds,omitempty"`
	// Date is YYYY-MM-DD, an inclusive lower bound at local midnight.
	Date string `json:"date,omitempty"`
}

// Query is a resolved Selection, ready for the row source.
type Query struct {
	CampaignIDs []string
	Since       *time.Time
}

type CampaignSource interface {
	ByIDs(ctx context.Context, ids []string) ([]models.Campaign, error)
}

type CampaignCache interface {
	Get(ctx context.Context, project string) ([]models.Campaign, bool, error)
	Set(ctx context.Context, project string, campaigns []models.Campaign) error
}

// Catalog knows the configured projects and their campaigns.
type Catalog struct {
	projects models.Projects
	source   CampaignSource
	cache    CampaignCache
	loc      *time.Location
	logger   *zap.Logger
}

// NewCatalog wires the project mapping to its metadata source. cache may be
// nil.
func NewCatalog(projects models.Projects, source CampaignSource, cache CampaignCache, loc *time.Location, logger *zap.Logger) *Catalog {
	if loc == nil {
		loc = time.Local
	}
	return &Catalog{
		projects: projects,
		source:   source,
		cache:    cache,
		loc:      loc,
		logger:   logger,
	}
}

// Projects returns a copy of the project mapping.
func (c *Catalog) Projects() models.Projects {
	out := make(models.Projects, len(c.projects))
	for name, ids := range c.projects {
		out[name] = slices.Clone(ids)
	}
	return out
}

func (c *Catalog) ProjectNames() []string {
	names := make([]string, 0, len(c.projects))
	for name := range c.projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Catalog) Location() *time.Location {
	return c.loc
}

func (c *Catalog) campaignIDs(project string) ([]string, error) {
	if strings.TrimSpace(project) == "" {
		return nil, fault.Clientf("project is required")
	}
	ids, ok := c.projects[project]
	if !ok {
		return nil, fault.Clientf("unknown project %q", project)
	}
	return ids, nil
}

// Campaigns returns the metadata of a project's campaigns, read through the
// cache when there is one. A failing cache is logged and bypassed.
func (c *Catalog) Campaigns(ctx context.Context, project string) ([]models.Campaign, error) {
	ids, err := c.campaignIDs(project)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		campaigns, ok, err := c.cache.Get(ctx, project)
		switch {
		case err != nil:
			c.logger.Warn("Campaign cache read failed", zap.String("project", project), zap.Error(err))
		case ok:
			return campaigns, nil
		}
	}

	campaigns, err := c.source.ByIDs(ctx, ids)
	if err != nil {
		return nil, fault.NewInternalError("load campaigns", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, project, campaigns); err != nil {
			c.logger.Warn("Campaign cache write failed", zap.String("project", project), zap.Error(err))
		}
	}
	return campaigns, nil
}

// Resolve narrows the project's campaigns by the explicit campaign list and
// the domain, and parses the date bound.
func (c *Catalog) Resolve(ctx context.Context, sel Selection) (Query, error) {
	ids, err := c.campaignIDs(sel.Project)
	if err != nil {
		return Query{}, err
	}

	if len(sel.CampaignIDs) > 0 {
		for _, id := range sel.CampaignIDs {
			if !slices.Contains(ids, id) {
				return Query{}, fault.Clientf("campaign %q does not belong to project %q", id, sel.Project)
			}
		}
		ids = slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
			return !slices.Contains(sel.CampaignIDs, id)
		})
	}

	if domain := strings.TrimSpace(sel.Domain); domain != "" {
		campaigns, err := c.Campaigns(ctx, sel.Project)
		if err != nil {
			return Query{}, err
		}
		inDomain := make(map[string]bool, len(campaigns))
		for _, cp := range campaigns {
			if strings.EqualFold(cp.Domain, domain) {
				inDomain[cp.CampaignID] = true
			}
		}
		ids = slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
			return !inDomain[id]
		})
	}

	if len(ids) == 0 {
		return Query{}, fault.Clientf("no campaign matches the selection")
	}

	q := Query{CampaignIDs: ids}
	if date := strings.TrimSpace(sel.Date); date != "" {
		since, err := time.ParseInLocation(dateLayout, date, c.loc)
		if err != nil {
			return Query{}, fault.NewClientError("invalid date, expected YYYY-MM-DD", err)
		}
		q.Since = &since
	}
	return q, nil
}

// Warm queues a background job that loads every project's campaigns into
// the cache. It reports whether the job was accepted.
func (c *Catalog) Warm(ctx context.Context, pool *workerpool.WorkerPool) bool {
	if c.cache == nil {
		return false
	}
	names := c.ProjectNames()

	return pool.Submit(func(ctx context.Context) {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, name := range names {
			g.Go(func() error {
				_, err := c.Campaigns(ctx, name)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			c.logger.Warn("Campaign cache warm-up incomplete", zap.Error(err))
			return
		}
		c.logger.Info("Campaign cache warmed", zap.Int("projects", len(names)))
	})
}
