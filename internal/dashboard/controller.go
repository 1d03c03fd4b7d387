package dashboard

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/services"
	"go.uber.org/zap"
)

type Fetcher interface {
	Fetch(ctx context.Context, sel services.Selection, filter string) ([]models.Row, error)
}

// Controller owns one dashboard State and serializes every change to it.
type Controller struct {
	mu       sync.Mutex
	state    State
	fetcher  Fetcher
	logger   *zap.Logger
	newToken func() uuid.UUID
}

func NewController(fetcher Fetcher, pageSize int, logger *zap.Logger) *Controller {
	return &Controller{
		state:    Initial(pageSize),
		fetcher:  fetcher,
		logger:   logger,
		newToken: uuid.New,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

func (c *Controller) View() TableView {
	return View(c.State())
}

// settle applies a fetch result and reports whether it was still current.
func (c *Controller) settle(token uuid.UUID, a Action) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.state.pending == token
	c.state = Reduce(c.state, a)
	return c.state, current
}

// Fetch loads the rows of the current selection. When another fetch is
// started before this one returns, this result is dropped and the returned
// State is the one left by the newer fetch.
func (c *Controller) Fetch(ctx context.Context) (State, error) {
	token := c.newToken()

	c.mu.Lock()
	c.state = Reduce(c.state, FetchStarted{Token: token})
	sel, filter := c.state.Selection, c.state.Filter
	c.mu.Unlock()

	rows, err := c.fetcher.Fetch(ctx, sel, filter)
	if err != nil {
		c.logger.Warn("Fetch failed", zap.String("project", sel.Project), zap.Error(err))
		state, _ := c.settle(token, FetchFailed{Token: token, Err: err})
		return state, err
	}

	state, current := c.settle(token, Loaded{Token: token, Rows: rows})
	if !current {
		c.logger.Debug("Stale fetch result dropped", zap.String("token", token.String()))
	}
	return state, nil
}
