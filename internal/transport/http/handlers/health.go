package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/tixflow/listing-service/internal/transport/http/response"
)

// ReadinessChecker checks if a dependency is ready.
type ReadinessChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type pingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// NewPingChecker adapts a Ping method (redis, s3, rabbit) to a checker.
func NewPingChecker(name string, ping func(ctx context.Context) error) ReadinessChecker {
	return &pingChecker{name: name, ping: ping}
}

func (c *pingChecker) Name() string                    { return c.name }
func (c *pingChecker) Check(ctx context.Context) error { return c.ping(ctx) }

type HealthHandler struct {
	checkers []ReadinessChecker
	timeout  time.Duration
}

func NewHealthHandler(checkers ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, timeout: 3 * time.Second}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readyz runs every checker concurrently and answers 503 if any fails.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make([]checkResult, len(h.checkers))
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		allHealthy = true
	)
	for i, c := range h.checkers {
		wg.Add(1)
		go func(idx int, c ReadinessChecker) {
			defer wg.Done()
			if err := c.Check(ctx); err != nil {
				results[idx] = checkResult{Name: c.Name(), Status: "unhealthy", Error: err.Error()}
				mu.Lock()
				allHealthy = false
				mu.Unlock()
				return
			}
			results[idx] = checkResult{Name: c.Name(), Status: "healthy"}
		}(i, c)
	}
	wg.Wait()

	status, code := "ready", http.StatusOK
	if !allHealthy {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	response.Data(w, code, map[string]any{"status": status, "checks": results})
}
