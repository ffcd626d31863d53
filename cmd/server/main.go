package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ryssroad/discord-ai/config"
	"github.com/ryssroad/discord-ai/internal/adapter/rest"
	"github.com/ryssroad/discord-ai/internal/core"
	"github.com/ryssroad/discord-ai/internal/llm"
	"github.com/ryssroad/discord-ai/internal/session"
	"github.com/ryssroad/discord-ai/internal/store"
	"github.com/ryssroad/discord-ai/internal/transport"
)

func main() {
	// 1. Init Config
	config.Init()

	// 2. Init Logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// 3. Load Accounts
	accounts, err := config.LoadAccounts(config.AppConfig.Engine.AccountsFile)
	if err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}

	// 4. Init Store
	db, err := store.New(config.AppConfig.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	// 5. Init Response Generator
	generator := llm.NewOpenAIProvider(config.AppConfig.LLM)

	// 6. Init Orchestrator with one session per account
	orchestrator := core.NewOrchestrator(logger)
	for _, acc := range accounts {
		channel := transport.NewClient(acc, logger)
		monitor := session.NewMonitor(acc, config.AppConfig.Engine, channel, db, generator, logger)
		orchestrator.Register(monitor)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := orchestrator.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Orchestrator stopped", zap.Error(err))
		}
	}()

	// 7. Ops REST surface (health, account status, audit logs)
	restAdapter := rest.NewAdapter(config.AppConfig.Server.Port, orchestrator, db, logger)
	go func() {
		if err := restAdapter.Start(ctx); err != nil {
			log.Fatalf("Ops server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")
	cancel()
}
