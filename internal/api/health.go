package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/paulexconde/npsdash/internal/pkg/httputil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Status string                    `json:"status"` // "healthy", "unhealthy"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker pings the named dependencies. A nil Pinger is skipped.
type HealthChecker struct {
	deps      map[string]Pinger
	startTime time.Time
	logger    *zap.Logger
}

func NewHealthChecker(deps map[string]Pinger, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{deps: deps, startTime: time.Now(), logger: logger}
}

//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	httputil.OK(w, hc.logger, HealthStatus{
		Status: overallStatus(checks),
		Uptime: formatUptime(time.Since(hc.startTime)),
		Checks: checks,
	})
}

//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, hc.logger, map[string]string{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness answers 503 while any dependency is down.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := overallStatus(checks)

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	httputil.JSON(w, hc.logger, status, map[string]any{
		"ready":  overall == "healthy",
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	var mu sync.Mutex
	checks := make(map[string]ComponentCheck, len(hc.deps))

	var g errgroup.Group
	for name, dep := range hc.deps {
		if dep == nil {
			continue
		}
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			start := time.Now()
			err := dep.Ping(ctx)
			check := ComponentCheck{Status: "up", Latency: time.Since(start).Round(time.Millisecond).String()}
			if err != nil {
				check.Status = "down"
				check.Message = err.Error()
				hc.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			}

			mu.Lock()
			checks[name] = check
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return checks
}

func overallStatus(checks map[string]ComponentCheck) string {
	for _, c := range checks {
		if c.Status != "up" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
}
