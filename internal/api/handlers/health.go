package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	db    *database.DB
	cache *services.CacheService
}

func NewHealthHandler(db *database.DB, cache *services.CacheService) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// GetHealth returns basic health status - always returns 200 if server is running
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fanta-optimizer",
		"time":    time.Now().UTC(),
	})
}

// GetReady probes the configured backing stores
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "disabled"
	}

	if h.cache.Enabled() {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	if ready {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
}
