package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReadinessCheck returns nil when the named dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func() error
}

type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	checks    []ReadinessCheck
}

func NewHealthHandler(logger *zap.Logger, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		checks:    checks,
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

// Readiness answers 503 while any check fails, e.g. the provider circuit is open.
func (h *HealthHandler) Readiness(c *gin.Context) {
	results, ok := h.runChecks()
	if !ok {
		h.logger.Warn("Readiness check failed", zap.Any("checks", results))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Uptime: time.Since(h.startTime).String(),
			Checks: results,
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
		Checks: results,
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	results, ok := h.runChecks()
	status := "ok"
	if !ok {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    results,
	})
}

func (h *HealthHandler) runChecks() (map[string]string, bool) {
	if len(h.checks) == 0 {
		return nil, true
	}

	results := make(map[string]string, len(h.checks))
	ok := true
	for _, check := range h.checks {
		if err := check.Check(); err != nil {
			results[check.Name] = err.Error()
			ok = false
			continue
		}
		results[check.Name] = "ok"
	}
	return results, ok
}
