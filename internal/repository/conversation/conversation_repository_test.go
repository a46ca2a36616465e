package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/citizenslab/citizens-chat/internal/domain"
)

func newTestRepo(t *testing.T) (ConversationRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// Every pooled connection to :memory: is its own database; keep one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewConversationRepository(db), db
}

func seedConversation(t *testing.T, repo ConversationRepository, db *gorm.DB, userID uint, messages int) uint {
	t.Helper()

	created, err := repo.Create(context.Background(), &domain.Conversation{UserID: userID, Title: "test"})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	for i := 0; i < messages; i++ {
		msg := &domain.Message{ConversationID: created.ID, Role: domain.RoleUser, Content: "hi"}
		if err := db.Create(msg).Error; err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	return created.ID
}

func TestDeleteCascadesToMessages(t *testing.T) {
	repo, db := newTestRepo(t)
	convID := seedConversation(t, repo, db, 42, 3)

	if err := repo.Delete(context.Background(), convID, 42); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Message{}).Where("conversation_id = ?", convID).Count(&count).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected messages deleted with conversation, %d remain", count)
	}
}

func TestDeleteRejectsForeignOwnerAndLeavesRowsIntact(t *testing.T) {
	repo, db := newTestRepo(t)
	convID := seedConversation(t, repo, db, 42, 2)

	err := repo.Delete(context.Background(), convID, 99)
	if !errors.Is(err, ErrUnauthorizedAccess) {
		t.Fatalf("expected ErrUnauthorizedAccess, got %v", err)
	}

	if _, err := repo.FindByID(context.Background(), convID); err != nil {
		t.Fatalf("conversation should survive a rejected delete: %v", err)
	}
	var count int64
	if err := db.Model(&domain.Message{}).Where("conversation_id = ?", convID).Count(&count).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 messages intact, got %d", count)
	}
}

func TestFindByIDReportsMissingConversation(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.FindByID(context.Background(), 12345)
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}
