package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const checkTimeout = 3 * time.Second

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks map[string]Checker
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger}
}

type result struct {
	Status string `json:"status"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := make(map[string]result, len(h.checks))
	status := http.StatusOK

	for name, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.Error("health check failed", "name", name, "error", err)
			results[name] = result{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = result{Status: "ok"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
