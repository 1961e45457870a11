package database

import (
	"context"
	"time"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus summarizes database connectivity and pool pressure.
type HealthStatus struct {
	Status          string        `json:"status"`
	Latency         time.Duration `json:"latency"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	Errors          []string      `json:"errors,omitempty"`
	CheckedAt       time.Time     `json:"checked_at"`
}

// Health pings the database and inspects the connection pool.
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    StatusHealthy,
		CheckedAt: time.Now(),
	}

	start := time.Now()
	if err := m.db.PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
		return status
	}
	status.Latency = time.Since(start)

	stats := m.db.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle

	// Pool saturation is a leading indicator of request latency
	if m.cfg.MaxOpenConns > 0 && stats.InUse >= m.cfg.MaxOpenConns {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool exhausted")
	}

	return status
}
