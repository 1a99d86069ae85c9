// Package health backs the /livez and /readyz endpoints with periodically
// evaluated probes. A probe flips unhealthy only after three consecutive
// failures and recovers on the first pass, so a single slow database ping
// does not knock the API out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the state of one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	failuresToTrip = 3
	passesToReset  = 1
)

// probe is one registered check plus its evaluated state. evaluate runs on
// a single goroutine per probe; the state is shared with the HTTP handlers
// under mu.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	mu      sync.Mutex
	healthy bool
	lastErr error
	fails   int
	passes  int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	// Probes start healthy so registration order cannot fail a rollout.
	return &probe{name: name, timeout: timeout, check: check, healthy: true}
}

func (p *probe) evaluate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.check(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.passes = 0
		p.fails++
		if p.fails >= failuresToTrip {
			p.healthy = false
		}
		return
	}
	p.fails = 0
	p.passes++
	if p.passes >= passesToReset {
		p.healthy = true
	}
}

func (p *probe) state() (healthy bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy, p.lastErr
}

// Health evaluates liveness and readiness probes and serves their state.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	live      []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns a Health that reports not-ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe for /livez. Liveness failures mean the
// process itself is wedged and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = append(h.live, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a probe for /readyz. Readiness failures mean
// the service should be taken out of rotation but left running.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start evaluates every registered probe on its own goroutine at the given
// interval until the context is cancelled. Register probes before calling
// Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.live)+len(h.readiness))
	probes = append(probes, h.live...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.evaluate(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.evaluate(ctx)
				}
			}
		}(p)
	}
}

// SetReady flips the manual readiness gate. Run with true once startup
// finishes and with false at the start of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness probe passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if healthy, _ := p.state(); !healthy {
			return false
		}
	}
	return true
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while every liveness probe passes,
// otherwise 503 with the failing probes listed.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := append([]*probe(nil), h.live...)
	h.mu.RUnlock()

	respond(w, failing(probes))
}

// ReadyEndpoint serves /readyz: 200 while the manual gate is open and every
// readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := append([]*probe(nil), h.readiness...)
	h.mu.RUnlock()

	failures := failing(probes)
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	respond(w, failures)
}

func failing(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		healthy, lastErr := p.state()
		if healthy {
			continue
		}
		if lastErr != nil {
			failures[p.name] = lastErr.Error()
		} else {
			failures[p.name] = "check is unhealthy"
		}
	}
	return failures
}

func respond(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
