// File: internal/repository/message/message_repository.go

package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/citizenslab/citizens-chat/internal/domain"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

const maxContentLength = 100000

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create appends a message after validating its role and content.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error during message creation for conversation ID %d: %v", message.ConversationID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created with ID: %d for conversation: %d", message.ID, message.ConversationID)
	return message, nil
}

// FindByConversationID returns all messages of a conversation in ascending
// timestamp order, with the insertion sequence breaking ties.
func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for conversation ID %d: %v", conversationID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

func (r *gormMessageRepository) CountByConversationID(ctx context.Context, conversationID uint) (int64, error) {
	if conversationID == 0 {
		return 0, errors.New("invalid conversation ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for conversation ID %d: %v", conversationID, err)
		return 0, errors.New("database error counting messages")
	}

	return count, nil
}

// DeleteByConversationID performs a bulk deletion of all messages associated
// with a given conversation.
func (r *gormMessageRepository) DeleteByConversationID(ctx context.Context, conversationID uint) error {
	if conversationID == 0 {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Delete(&domain.Message{})
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting messages for conversation ID %d: %v", conversationID, result.Error)
		return errors.New("database error deleting messages by conversation ID")
	}

	log.Printf("[MessageRepository] Deleted %d messages for conversation %d", result.RowsAffected, conversationID)
	return nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}

	if message.ConversationID == 0 {
		return errors.New("conversation ID is required")
	}

	if !domain.IsValidRole(message.Role) {
		return fmt.Errorf("invalid message role %q", message.Role)
	}

	// Empty content is permitted (a backend may legitimately return nothing),
	// but the column is never null.
	if len(message.Content) > maxContentLength {
		return fmt.Errorf("message content too long (max %d characters)", maxContentLength)
	}

	return nil
}
