package ports

import (
	"context"
	"time"

	"filmdash/models"

	"github.com/google/uuid"
)

// ChatRepository defines the interface for direct messaging storage
type ChatRepository interface {
	// FindChat returns the chat between two users in either order
	FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)

	// CreateChat inserts a chat and a time check for both participants
	CreateChat(ctx context.Context, a, b uuid.UUID, at time.Time) (*models.Chat, error)

	// AddMessage appends a message to a chat
	AddMessage(ctx context.Context, msg *models.Message) error

	// ListMessages returns a chat's messages, oldest first
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)

	// TouchTimeCheck records that the user has seen the chat at the given time
	TouchTimeCheck(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error

	// ListChatSummaries returns the user's chats that have at least one message,
	// with the latest message and the user's time check
	ListChatSummaries(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error)
}
