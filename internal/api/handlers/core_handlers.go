package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CoreHandlers provides health and readiness endpoints.
type CoreHandlers struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCoreHandlers creates new core handlers
func NewCoreHandlers(db *sqlx.DB, logger *zap.Logger) *CoreHandlers {
	return &CoreHandlers{db: db, logger: logger}
}

// Health reports process liveness.
func (h *CoreHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// Ready reports whether the database is reachable.
func (h *CoreHandlers) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
