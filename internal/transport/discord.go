package transport

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ryssroad/discord-ai/config"
	"github.com/ryssroad/discord-ai/internal/model"
)

const baseURL = "https://discord.com/api/v9"

// Client talks to the channel REST API on behalf of one account: fetching
// recent messages, posting, and keeping the typing indicator alive. No
// gateway session; everything is plain polling over HTTP.
type Client struct {
	http      *resty.Client
	channelID string
	userID    string
	logger    *zap.Logger
}

func NewClient(acc config.AccountConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("authorization", acc.Token)

	for k, v := range acc.Headers {
		httpClient.SetHeader(k, v)
	}
	if acc.Proxy != nil {
		httpClient.SetProxy(acc.Proxy.URL())
		logger.Debug("transport using proxy",
			zap.String("account", acc.UserID),
			zap.String("host", acc.Proxy.Host))
	}

	return &Client{
		http:      httpClient,
		channelID: acc.ChannelID,
		userID:    acc.UserID,
		logger:    logger,
	}
}

// FetchRecent requests the most recent limit messages from the channel,
// newest first as the API returns them.
func (c *Client) FetchRecent(ctx context.Context, limit int) ([]model.RawMessage, error) {
	var messages []model.RawMessage

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&messages).
		Get("/channels/" + c.channelID + "/messages")

	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch messages: channel API error: %s", resp.Status())
	}

	c.logger.Debug("fetched channel messages",
		zap.String("account", c.userID),
		zap.Int("count", len(messages)))
	return messages, nil
}

type sendRequest struct {
	Content          string          `json:"content"`
	TTS              bool            `json:"tts"`
	Flags            int             `json:"flags"`
	MessageReference *model.ReplyRef `json:"message_reference,omitempty"`
}

// Send posts content to the channel, optionally as a reply to another
// message. Not retried on failure; the caller decides what a lost post means.
func (c *Client) Send(ctx context.Context, content string, replyTo *model.ReplyRef) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{Content: content, MessageReference: replyTo}).
		Post("/channels/" + c.channelID + "/messages")

	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send message: channel API error: %s", resp.Status())
	}

	c.logger.Debug("message sent",
		zap.String("account", c.userID),
		zap.Bool("is_reply", replyTo != nil))
	return nil
}

// SignalTyping fires one "typing" indicator. Idempotent; the indicator decays
// on its own after a few seconds, so callers repeat it while composing.
func (c *Client) SignalTyping(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody("").
		Post("/channels/" + c.channelID + "/typing")

	if err != nil {
		return fmt.Errorf("signal typing: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("signal typing: channel API error: %s", resp.Status())
	}
	return nil
}
