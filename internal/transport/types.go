package transport

import "context"

// ChatTarget addresses one chat. ChatID is a numeric id ("123", "-100...")
// or a public "@channel" username, as the Bot API accepts both.
type ChatTarget struct {
	ChatID   string
	ThreadID int // forum topic thread id (0 if none)
}

type MessageRef struct {
	ChatID    string
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers text messages. The notifier depends on this port only.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
