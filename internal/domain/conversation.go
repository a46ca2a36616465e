// File: internal/domain/conversation.go
package domain

import "time"

// Conversation represents a single chat thread owned by a user.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title"` // Optional display title, e.g., "Capital of Sweden"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
