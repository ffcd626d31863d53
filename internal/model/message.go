package model

// DialogRecord is an immutable snapshot of one chat message as seen by the
// orchestration engine.
type DialogRecord struct {
	ID                  string `json:"id"`
	Content             string `json:"content"`
	AuthorID            string `json:"author_id"`
	Timestamp           string `json:"timestamp"`
	ReferencedMessageID string `json:"referenced_message_id,omitempty"`
}

// DialogContext is the recent two-party history between one account and one
// counterpart user, ordered oldest to newest. Rebuilt fresh on every query.
type DialogContext struct {
	UserID   string         `json:"user_id"`
	Messages []DialogRecord `json:"messages"`
}

// RawMessage mirrors the wire shape returned by the channel messages endpoint.
type RawMessage struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Timestamp  string      `json:"timestamp"`
	Author     RawAuthor   `json:"author"`
	Referenced *RawMessage `json:"referenced_message,omitempty"`
}

type RawAuthor struct {
	ID string `json:"id"`
}

// ReplyRef points an outgoing message at the message it replies to.
type ReplyRef struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}
