package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/labstack/gommon/log"
)

// BackendProbeJob is the scheduler name of the backend availability probe
const BackendProbeJob = "backend-probe"

// Pinger checks that a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeResult is the outcome of the latest probe run
type ProbeResult struct {
	Healthy   bool      `json:"healthy"`
	Checked   bool      `json:"checked"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// BackendProbe periodically pings the backend and keeps the last result for
// readiness checks
type BackendProbe struct {
	pinger Pinger
	last   atomic.Pointer[ProbeResult]
	now    func() time.Time
}

func NewBackendProbe(pinger Pinger) *BackendProbe {
	p := &BackendProbe{
		pinger: pinger,
		now:    time.Now,
	}
	p.last.Store(&ProbeResult{})
	return p
}

// Run pings the backend once and records the result
func (p *BackendProbe) Run(ctx context.Context) error {
	err := p.pinger.Ping(ctx)

	result := &ProbeResult{
		Healthy:   err == nil,
		Checked:   true,
		CheckedAt: p.now().UTC(),
	}
	if err != nil {
		result.Error = err.Error()
	}

	if prev := p.last.Swap(result); prev.Checked && prev.Healthy != result.Healthy {
		if result.Healthy {
			log.Infof("backend is reachable again")
		} else {
			log.Warnf("backend became unreachable: %v", err)
		}
	}
	return err
}

// Status returns the latest probe result. Before the first run Checked is
// false.
func (p *BackendProbe) Status() ProbeResult {
	return *p.last.Load()
}
