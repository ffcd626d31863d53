package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ryssroad/discord-ai/config"
	"github.com/ryssroad/discord-ai/internal/llm"
	"github.com/ryssroad/discord-ai/internal/transport"
)

func main() {
	fmt.Println("🔍 Starting Credential Health Check...")
	fmt.Println("----------------------------------------")

	config.Init()
	logger := zap.NewNop()

	accounts, err := config.LoadAccounts(config.AppConfig.Engine.AccountsFile)
	if err != nil {
		fmt.Printf("❌ FAIL: cannot load accounts: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// 1. Check channel credentials per account
	for _, acc := range accounts {
		client := transport.NewClient(acc, logger)
		msgs, err := client.FetchRecent(ctx, 1)
		if err != nil {
			fmt.Printf("❌ FAIL: account %s fetch: %v\n", acc.UserID, err)
			continue
		}
		fmt.Printf("✅ PASS: account %s (channel %s, %d message(s) visible)\n",
			acc.UserID, acc.ChannelID, len(msgs))
	}

	// 2. Check the response generator endpoint
	fmt.Println("\n[LLM] Testing generation endpoint...")
	generator := llm.NewOpenAIProvider(config.AppConfig.LLM)
	reply, err := generator.Generate(ctx, llm.GenerateRequest{
		ChannelContext: []string{"anyone benchmarked the new release yet?"},
		CurrentMessage: "what do you think about it?",
		IsReply:        true,
	})
	if err != nil {
		fmt.Printf("❌ FAIL: LLM: %v\n", err)
		return
	}
	fmt.Printf("✅ PASS: LLM replied (%d chars)\n", len(reply))
}
