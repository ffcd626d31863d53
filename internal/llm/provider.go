package llm

import (
	"context"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest carries everything the generator needs to produce one
// in-character reply: the two-party history with the counterpart user, the
// wider channel context, and the message being addressed. IsReply false means
// an unprompted ambient remark.
type GenerateRequest struct {
	PersonalHistory []string
	ChannelContext  []string
	CurrentMessage  string
	IsReply         bool
}

type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
