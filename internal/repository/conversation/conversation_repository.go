// File: internal/repository/conversation/conversation_repository.go

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/citizenslab/citizens-chat/internal/domain"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")
var ErrUnauthorizedAccess = errors.New("unauthorized access to conversation")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Create persists a new conversation after validating its input.
func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err := r.validateConversationInput(conversation); err != nil {
		log.Printf("[ConversationRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(conversation).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error during creation for user ID %d: %v", conversation.UserID, err)
		return nil, errors.New("database error creating conversation")
	}

	log.Printf("[ConversationRepository] Conversation created with ID: %d for user: %d", conversation.ID, conversation.UserID)
	return conversation, nil
}

func (r *gormConversationRepository) FindByID(ctx context.Context, conversationID uint) (*domain.Conversation, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}

	var conversation domain.Conversation
	err := r.db.WithContext(ctx).First(&conversation, conversationID).Error
	return r.handleFindError(err, &conversation, "FindByID")
}

// FindByUserID returns the user's conversations, most recently updated first.
func (r *gormConversationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var conversations []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&conversations).Error

	if err != nil {
		log.Printf("[ConversationRepository] Database error finding conversations for user ID %d: %v", userID, err)
		return nil, errors.New("database error fetching conversations")
	}

	return conversations, nil
}

// Delete removes a conversation owned by userID together with its messages.
// Messages are owned exclusively by their conversation, so the delete cascades.
func (r *gormConversationRepository) Delete(ctx context.Context, conversationID, userID uint) error {
	if conversationID == 0 || userID == 0 {
		return errors.New("invalid conversation ID or user ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("id = ? AND user_id = ?", conversationID, userID).
			Delete(&domain.Conversation{})

		if result.Error != nil {
			log.Printf("[ConversationRepository] Database error deleting conversation ID %d for user ID %d: %v", conversationID, userID, result.Error)
			return errors.New("database error deleting conversation")
		}

		if result.RowsAffected == 0 {
			return ErrUnauthorizedAccess
		}

		if err := tx.
			Where("conversation_id = ?", conversationID).
			Delete(&domain.Message{}).Error; err != nil {
			log.Printf("[ConversationRepository] Database error cascading message delete for conversation ID %d: %v", conversationID, err)
			return errors.New("database error deleting conversation messages")
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[ConversationRepository] Conversation deleted: ID %d for user %d", conversationID, userID)
	return nil
}

// TouchUpdatedAt refreshes the conversation's last-updated timestamp.
// CURRENT_TIMESTAMP keeps the value monotonically non-decreasing.
func (r *gormConversationRepository) TouchUpdatedAt(ctx context.Context, conversationID uint) error {
	if conversationID == 0 {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))

	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error updating timestamp for conversation ID %d: %v", conversationID, result.Error)
		return errors.New("database error updating conversation timestamp")
	}

	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// VerifyOwnership checks ownership without exposing row data.
func (r *gormConversationRepository) VerifyOwnership(ctx context.Context, conversationID, userID uint) (bool, error) {
	if conversationID == 0 || userID == 0 {
		return false, errors.New("invalid conversation ID or user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).Where("id = ? AND user_id = ?", conversationID, userID).Count(&count).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error checking ownership for conversation ID %d, user ID %d: %v", conversationID, userID, err)
		return false, errors.New("database error checking conversation ownership")
	}

	return count > 0, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormConversationRepository) validateConversationInput(conversation *domain.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}

	if conversation.UserID == 0 {
		return errors.New("user ID is required")
	}

	return r.validateTitle(conversation.Title)
}

func (r *gormConversationRepository) validateTitle(title string) error {
	if len(title) > 255 {
		return errors.New("title must be 255 characters or less")
	}

	if strings.Contains(title, "<script") || strings.Contains(title, "javascript:") {
		return errors.New("invalid characters detected in title")
	}

	return nil
}

// handleFindError maps gorm errors to repository errors without leaking details.
func (r *gormConversationRepository) handleFindError(err error, conversation *domain.Conversation, operation string) (*domain.Conversation, error) {
	if err == nil {
		return conversation, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}

	log.Printf("[ConversationRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
