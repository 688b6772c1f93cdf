package mapdex

import (
	"context"
	"errors"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "error"
	Checks map[string]string // component -> "ok"/"error"
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Health checks the storage backend.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := HealthStatus{Status: string(report.Status), Checks: checks}

	var err error
	if !status.Healthy() {
		err = errors.New("mapdex: unhealthy")
	}
	c.obs.observe("health", start, err)
	return status
}
