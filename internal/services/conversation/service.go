// File: internal/services/conversation/service.go
package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/citizenslab/citizens-chat/internal/domain"
	conversationrepo "github.com/citizenslab/citizens-chat/internal/repository/conversation"
	messagerepo "github.com/citizenslab/citizens-chat/internal/repository/message"
)

var ErrUnauthorized = errors.New("conversation not found or unauthorized")

// Logger defines the logging interface used by the conversation service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service provides conversation CRUD with ownership checks. Turn handling
// lives in the turn service; this covers everything around it.
type Service struct {
	conversations conversationrepo.ConversationRepository
	messages      messagerepo.MessageRepository
	logger        Logger
}

func NewService(
	conversations conversationrepo.ConversationRepository,
	messages messagerepo.MessageRepository,
	logger Logger,
) *Service {
	return &Service{
		conversations: conversations,
		messages:      messages,
		logger:        logger,
	}
}

func (s *Service) CreateConversation(ctx context.Context, userID uint, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)

	created, err := s.conversations.Create(ctx, &domain.Conversation{
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		s.logger.Error("failed to create conversation", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("conversation created", "user_id", userID, "conversation_id", created.ID)
	return created, nil
}

// GetUserConversations lists the user's conversations, most recently updated
// first.
func (s *Service) GetUserConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	return s.conversations.FindByUserID(ctx, userID)
}

// GetConversationMessages returns the full ordered message history after
// verifying ownership.
func (s *Service) GetConversationMessages(ctx context.Context, userID, conversationID uint) ([]domain.Message, error) {
	owned, err := s.conversations.VerifyOwnership(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrUnauthorized
	}

	return s.messages.FindByConversationID(ctx, conversationID)
}

// DeleteConversation removes a conversation and, by cascade, its messages.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	if err := s.conversations.Delete(ctx, conversationID, userID); err != nil {
		if errors.Is(err, conversationrepo.ErrUnauthorizedAccess) {
			return ErrUnauthorized
		}
		return err
	}

	s.logger.Info("conversation deleted", "user_id", userID, "conversation_id", conversationID)
	return nil
}
