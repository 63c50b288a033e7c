// Package health serves the startup, liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"members/pkg/platform/httputil"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Checker tracks startup completion and the readiness checks of shared handles.
type Checker struct {
	started atomic.Bool
	timeout time.Duration

	mu     sync.RWMutex
	checks []namedCheck
}

func New() *Checker {
	return &Checker{timeout: 2 * time.Second}
}

// MarkStarted flips the startup probe to healthy.
func (c *Checker) MarkStarted() {
	c.started.Store(true)
}

// Startup runs the startup work while the probes are already being served and
// marks the checker started once fn succeeds. On failure the probe stays at 503.
func (c *Checker) Startup(ctx context.Context, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	c.MarkStarted()
	return nil
}

// Started reports whether MarkStarted was called.
func (c *Checker) Started() bool {
	return c.started.Load()
}

// AddCheck registers a readiness check.
func (c *Checker) AddCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Register mounts the probes.
func (c *Checker) Register(r chi.Router) {
	r.Get("/health/startup", c.handleStartup)
	r.Get("/health/live", c.handleLive)
	r.Get("/health/ready", c.handleReady)
}

func (c *Checker) handleStartup(w http.ResponseWriter, _ *http.Request) {
	if !c.Started() {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Checker) handleLive(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Checker) handleReady(w http.ResponseWriter, r *http.Request) {
	if !c.Started() {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "starting"})
		return
	}

	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(checks))
		healthy = true
		g       errgroup.Group
	)
	for _, check := range checks {
		g.Go(func() error {
			status := "ok"
			if err := check.fn(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[check.name] = status
			if status != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, map[string]any{"status": status, "checks": results})
}
