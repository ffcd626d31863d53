package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ryssroad/discord-ai/config"
)

type OpenAIProvider struct {
	client *resty.Client
	config config.LLMConfig
	rng    *rand.Rand
}

type openAIRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type openAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	client := resty.New().SetTimeout(30 * time.Second)
	if cfg.Proxy != "" && strings.Contains(cfg.Proxy, "http") {
		client.SetProxy(cfg.Proxy)
	}

	return &OpenAIProvider{
		client: client,
		config: cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate asks the chat-completions endpoint for one reply. The whole
// instruction set rides in a single system message; sampling parameters come
// from config.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := p.config.ModelName

	// Adjust model name based on provider
	if p.config.Provider == "deepseek" {
		model = "deepseek-chat"
	} else if p.config.Provider == "openai" && model == "" {
		model = "gpt-3.5-turbo"
	}

	reqBody := openAIRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: buildPrompt(p.rng, req)},
		},
		Temperature:      p.config.Temperature,
		MaxTokens:        p.config.MaxTokens,
		PresencePenalty:  p.config.PresencePenalty,
		FrequencyPenalty: p.config.FrequencyPenalty,
	}

	var respBody openAIResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&respBody).
		Post(p.config.APIURL + "/chat/completions")

	if err != nil {
		return "", err
	}

	if resp.IsError() {
		return "", fmt.Errorf("LLM API error: %s", resp.String())
	}

	if len(respBody.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}

	return strings.TrimSpace(respBody.Choices[0].Message.Content), nil
}
