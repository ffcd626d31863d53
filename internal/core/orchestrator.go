package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ryssroad/discord-ai/internal/session"
)

// Orchestrator runs one independent monitor goroutine per configured account.
// Sessions never communicate; the only shared state is the store underneath.
type Orchestrator struct {
	monitors []*session.Monitor
	logger   *zap.Logger
}

func NewOrchestrator(logger *zap.Logger) *Orchestrator {
	return &Orchestrator{logger: logger}
}

func (o *Orchestrator) Register(m *session.Monitor) {
	o.monitors = append(o.monitors, m)
}

// Run blocks until the context is cancelled. Monitors only return on context
// cancellation, so the first return tears the group down together.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("starting account sessions", zap.Int("count", len(o.monitors)))

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range o.monitors {
		m := m
		g.Go(func() error {
			return m.Run(ctx)
		})
	}
	return g.Wait()
}

// Statuses snapshots every registered session for the ops surface.
func (o *Orchestrator) Statuses() []session.Status {
	statuses := make([]session.Status, 0, len(o.monitors))
	for _, m := range o.monitors {
		statuses = append(statuses, m.Status())
	}
	return statuses
}
