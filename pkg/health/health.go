// Package health reports memstore health over HTTP.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the result of one named check.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
}

// CheckFunc performs a check.
type CheckFunc func() Check

// Response is the overall health document.
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
}

// Checker holds health and readiness checks.
type Checker struct {
	mu          sync.RWMutex
	checks      map[string]CheckFunc
	readyChecks map[string]CheckFunc
	started     time.Time
}

// NewChecker creates a Checker with no checks.
func NewChecker() *Checker {
	return &Checker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		started:     time.Now(),
	}
}

// RegisterCheck registers a health check
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RegisterReadinessCheck registers a readiness check
func (c *Checker) RegisterReadinessCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyChecks[name] = check
}

// Check runs the health checks.
func (c *Checker) Check() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perform(c.checks)
}

// CheckReadiness runs the readiness checks.
func (c *Checker) CheckReadiness() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perform(c.readyChecks)
}

func (c *Checker) perform(checks map[string]CheckFunc) Response {
	resp := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checks)),
		Uptime:    time.Since(c.started).Seconds(),
	}

	for name, fn := range checks {
		start := time.Now()
		check := fn()
		check.Name = name
		check.Duration = time.Since(start)
		check.LastChecked = start
		resp.Checks[name] = check

		// Worst status wins
		if check.Status == StatusUnhealthy {
			resp.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && resp.Status != StatusUnhealthy {
			resp.Status = StatusDegraded
		}
	}
	return resp
}

// Handler serves the health checks. Degraded still answers 200.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := c.Check()
		code := http.StatusOK
		if resp.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}

// ReadinessHandler serves the readiness checks. Anything but healthy is 503.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := c.CheckReadiness()
		code := http.StatusOK
		if resp.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
