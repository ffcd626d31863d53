package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryssroad/discord-ai/internal/core"
	"github.com/ryssroad/discord-ai/internal/store"
)

// LogReader is the slice of the store the ops surface needs.
type LogReader interface {
	RecentLogs(ctx context.Context, accountID string, limit int) ([]store.LogEntry, error)
}

// Adapter exposes a read-only ops surface over the running sessions:
// health, per-account status, and the audit trail.
type Adapter struct {
	Orchestrator *core.Orchestrator
	Logs         LogReader
	Logger       *zap.Logger
	Port         string
}

func NewAdapter(port string, orch *core.Orchestrator, logs LogReader, logger *zap.Logger) *Adapter {
	return &Adapter{
		Orchestrator: orch,
		Logs:         logs,
		Logger:       logger,
		Port:         port,
	}
}

func (a *Adapter) Start(ctx context.Context) error {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/v1/accounts", a.handleAccounts)
	r.GET("/api/v1/accounts/:id/logs", a.handleLogs)

	a.Logger.Info("Starting ops API server", zap.String("port", a.Port))
	return r.Run(":" + a.Port)
}

func (a *Adapter) handleAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": a.Orchestrator.Statuses()})
}

func (a *Adapter) handleLogs(c *gin.Context) {
	accountID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := a.Logs.RecentLogs(c.Request.Context(), accountID, limit)
	if err != nil {
		a.Logger.Error("failed to read audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "logs": entries})
}
