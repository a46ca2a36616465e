// File: internal/domain/message.go
package domain

import "time"

// Message roles. The role column is a closed enumeration; anything outside it
// is rejected at the repository boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single message within a conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index"`
	Role           string    `json:"role" gorm:"not null"` // "user", "assistant" or "system"
	Content        string    `json:"content" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsValidRole reports whether role belongs to the closed role enumeration.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
