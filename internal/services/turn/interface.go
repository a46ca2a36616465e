// File: internal/services/turn/interface.go
package turn

import (
	"context"

	"github.com/citizenslab/citizens-chat/internal/domain"
)

// ConversationStore is the narrow conversation contract the orchestrator
// consumes. FindByID reports a missing row as
// conversation.ErrConversationNotFound; any other error is treated as a
// store failure.
type ConversationStore interface {
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	TouchUpdatedAt(ctx context.Context, conversationID uint) error
}

// MessageStore is the narrow message contract the orchestrator consumes.
// FindByConversationID must return messages in ascending timestamp order.
type MessageStore interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error)
}

// Logger defines the logging interface used by the turn service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
