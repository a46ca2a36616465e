// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/citizenslab/citizens-chat/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error)
	CountByConversationID(ctx context.Context, conversationID uint) (int64, error)
	DeleteByConversationID(ctx context.Context, conversationID uint) error
}
