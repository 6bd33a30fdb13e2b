package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"partsportal/internal/jobs"

	"github.com/labstack/echo/v4"
)

// ProbeStatus exposes the latest backend probe result
type ProbeStatus interface {
	Status() jobs.ProbeResult
}

// Pinger checks an optional dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobLister reports the registered background jobs
type JobLister interface {
	JobNames() []string
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	probe     ProbeStatus
	limiter   Pinger
	jobs      JobLister
	version   string
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance. limiter and jobs
// may be nil.
func NewHealthHandlers(probe ProbeStatus, limiter Pinger, jobs JobLister, version string) *HealthHandlers {
	return &HealthHandlers{
		probe:     probe,
		limiter:   limiter,
		jobs:      jobs,
		version:   version,
		startedAt: time.Now(),
	}
}

// ReadinessStatus represents the readiness of the service and its dependencies
type ReadinessStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Backend   jobs.ProbeResult  `json:"backend"`
}

// LivenessCheck godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /health [get]
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	jobNames := []string{}
	if h.jobs != nil {
		jobNames = h.jobs.JobNames()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":     "alive",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"version":    h.version,
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
		"jobs":       jobNames,
	})
}

// ReadinessCheck godoc
// @Summary  Readiness probe
// @Description  Not ready until the backend probe has succeeded. Rate limiter outages only degrade the status.
// @Tags     health
// @Produce  json
// @Success  200  {object}  ReadinessStatus
// @Failure  503  {object}  ReadinessStatus
// @Router   /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	probe := h.probe.Status()
	ready := &ReadinessStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Backend:   probe,
	}

	switch {
	case !probe.Checked:
		ready.Services["backend"] = "pending"
		ready.Status = "not_ready"
	case !probe.Healthy:
		ready.Services["backend"] = "unreachable"
		ready.Status = "not_ready"
	default:
		ready.Services["backend"] = "healthy"
	}

	if h.limiter != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.limiter.Ping(ctx); err != nil {
			ready.Services["redis"] = "unhealthy"
			if ready.Status == "ready" {
				ready.Status = "degraded"
			}
		} else {
			ready.Services["redis"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if ready.Status == "not_ready" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, ready)
}
