package conversation

import (
	"context"

	"github.com/citizenslab/citizens-chat/internal/domain"
)

// ConversationRepository handles conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error)
	Delete(ctx context.Context, conversationID uint, userID uint) error
	TouchUpdatedAt(ctx context.Context, conversationID uint) error
	VerifyOwnership(ctx context.Context, conversationID, userID uint) (bool, error)
}
