package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a conversation between two members. The pair is unordered.
type Chat struct {
	ID        uuid.UUID `json:"id" db:"id"`
	User1ID   uuid.UUID `json:"user_1_id" db:"user_1_id"`
	User2ID   uuid.UUID `json:"user_2_id" db:"user_2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Other returns the participant that is not me
func (c *Chat) Other(me uuid.UUID) uuid.UUID {
	if c.User1ID == me {
		return c.User2ID
	}
	return c.User1ID
}

// Includes reports whether the user takes part in the chat
func (c *Chat) Includes(id uuid.UUID) bool {
	return c.User1ID == id || c.User2ID == id
}

type Message struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChatID      uuid.UUID `json:"chat_id" db:"chat_id"`
	SenderID    uuid.UUID `json:"sender_id" db:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id" db:"recipient_id"`
	Text        string    `json:"text" db:"text"`
	PostTime    time.Time `json:"post_time" db:"post_time"`
}

// TimeCheck records when a member last opened a chat
type TimeCheck struct {
	ChatID    uuid.UUID `json:"chat_id" db:"chat_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CheckedAt time.Time `json:"checked_at" db:"checked_at"`
}

// ChatSummary is one inbox row
type ChatSummary struct {
	Chat        Chat      `json:"chat"`
	Other       User      `json:"other"`
	LastMessage Message   `json:"last_message"`
	CheckedAt   time.Time `json:"checked_at"`
	Unread      bool      `json:"unread"`
}
