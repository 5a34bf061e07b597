// Package messaging implements one-to-one chats with unread tracking.
//
// Every chat carries a time check per participant: the last moment that
// participant opened it. A chat is unread for a participant when its latest
// message was posted after their time check.
package messaging

import (
	"context"
	"strings"
	"time"

	"filmdash/internal/errors"
	"filmdash/internal/validation"
	"filmdash/models"
	"filmdash/ports"

	"github.com/google/uuid"
)

// MessageInput is the message form
type MessageInput struct {
	Text string `form:"text" validate:"required,max=5000" label:"Message"`
}

// Conversation is one chat as shown on the send-message page
type Conversation struct {
	Chat     *models.Chat
	Other    *models.User
	Messages []*models.Message
}

// Service implements the messaging operations
type Service struct {
	chats ports.ChatRepository
	users ports.UserRepository
	now   func() time.Time
}

// NewService creates a messaging service
func NewService(chats ports.ChatRepository, users ports.UserRepository) *Service {
	return &Service{chats: chats, users: users, now: func() time.Time { return time.Now().UTC() }}
}

// OpenChat returns the chat between me and other, creating it on first use
func (s *Service) OpenChat(ctx context.Context, me, other uuid.UUID) (*models.Chat, error) {
	if me == other {
		return nil, errors.InvalidInput("cannot open a chat with yourself")
	}
	chat, err := s.chats.FindChat(ctx, me, other)
	if err == nil {
		return chat, nil
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		return nil, err
	}

	if _, err := s.users.GetUserByID(ctx, other); err != nil {
		return nil, err
	}
	return s.chats.CreateChat(ctx, me, other, s.now())
}

// Send posts a message from me to other. The sender's time check moves to
// the post time so their own message never shows as unread to them.
func (s *Service) Send(ctx context.Context, me, other uuid.UUID, in MessageInput) (*models.Message, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	chat, err := s.OpenChat(ctx, me, other)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:          uuid.New(),
		ChatID:      chat.ID,
		SenderID:    me,
		RecipientID: other,
		Text:        in.Text,
		PostTime:    s.now(),
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "failed to send message")
	}
	if err := s.chats.TouchTimeCheck(ctx, chat.ID, me, msg.PostTime); err != nil {
		return nil, errors.Wrap(err, "failed to update time check")
	}
	return msg, nil
}

// Conversation opens the chat with other, returns its messages oldest first
// and marks it read for me
func (s *Service) Conversation(ctx context.Context, me, other uuid.UUID) (*Conversation, error) {
	otherUser, err := s.users.GetUserByID(ctx, other)
	if err != nil {
		return nil, err
	}
	chat, err := s.OpenChat(ctx, me, other)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load messages")
	}
	if err := s.chats.TouchTimeCheck(ctx, chat.ID, me, s.now()); err != nil {
		return nil, errors.Wrap(err, "failed to update time check")
	}
	return &Conversation{Chat: chat, Other: otherUser, Messages: msgs}, nil
}

// Inbox lists my chats that have messages, latest message first, with the
// unread flag set
func (s *Service) Inbox(ctx context.Context, me uuid.UUID) ([]*models.ChatSummary, error) {
	summaries, err := s.chats.ListChatSummaries(ctx, me)
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		summary.Unread = summary.LastMessage.PostTime.After(summary.CheckedAt)
	}
	return summaries, nil
}

// HasUnread reports whether any of my chats has a message newer than my time check
func (s *Service) HasUnread(ctx context.Context, me uuid.UUID) (bool, error) {
	summaries, err := s.Inbox(ctx, me)
	if err != nil {
		return false, err
	}
	for _, summary := range summaries {
		if summary.Unread {
			return true, nil
		}
	}
	return false, nil
}

// Contacts lists every member except me, for the find-user picker
func (s *Service) Contacts(ctx context.Context, me uuid.UUID) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.ID != me {
			out = append(out, u)
		}
	}
	return out, nil
}
