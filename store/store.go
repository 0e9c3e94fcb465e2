package store

import (
	"context"

	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "store")

// MessageStore keeps the conversation history for a chat.
// The chat ID is taken from the chatmodel context.
type MessageStore interface {
	Messages(ctx context.Context) []llms.Message
	Add(ctx context.Context, msg llms.Message) error
	Reset(ctx context.Context) error
}
