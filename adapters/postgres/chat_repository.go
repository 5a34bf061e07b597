package postgres

import (
	"context"
	"database/sql"
	"time"

	"filmdash/internal/errors"
	"filmdash/models"
	"filmdash/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ChatRepositoryImpl implements ChatRepository over sqlx
type ChatRepositoryImpl struct {
	db *sqlx.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sqlx.DB) ports.ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

// orderPair stores every chat with the smaller id first so the unique
// constraint covers both directions
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}

// FindChat returns the chat between two users in either order
func (r *ChatRepositoryImpl) FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	u1, u2 := orderPair(a, b)
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, r.db.Rebind(`
		SELECT id, user_1_id, user_2_id, created_at
		FROM chats
		WHERE user_1_id = ? AND user_2_id = ?
	`), u1, u2)
	if err != nil {
		return nil, translate(err, "chat")
	}
	return &chat, nil
}

// CreateChat inserts a chat with a time check for each participant. Losing a
// race against a concurrent create returns the chat that won.
func (r *ChatRepositoryImpl) CreateChat(ctx context.Context, a, b uuid.UUID, at time.Time) (*models.Chat, error) {
	if a == b {
		return nil, errors.InvalidInput("cannot open a chat with yourself")
	}
	u1, u2 := orderPair(a, b)
	chat := &models.Chat{ID: uuid.New(), User1ID: u1, User2ID: u2, CreatedAt: at.UTC()}

	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO chats (id, user_1_id, user_2_id, created_at)
			VALUES (:id, :user_1_id, :user_2_id, :created_at)
		`, chat)
		if err != nil {
			return translate(err, "chat")
		}
		for _, user := range []uuid.UUID{u1, u2} {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO last_checked (chat_id, user_id, checked_at)
				VALUES (:chat_id, :user_id, :checked_at)
			`, &models.TimeCheck{ChatID: chat.ID, UserID: user, CheckedAt: chat.CreatedAt})
			if err != nil {
				return translate(err, "time check")
			}
		}
		return nil
	})
	if errors.HasCode(err, errors.CodeConflict) {
		return r.FindChat(ctx, u1, u2)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// AddMessage appends a message to a chat
func (r *ChatRepositoryImpl) AddMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.PostTime.IsZero() {
		msg.PostTime = time.Now()
	}
	msg.PostTime = msg.PostTime.UTC()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, recipient_id, text, post_time)
		VALUES (:id, :chat_id, :sender_id, :recipient_id, :text, :post_time)
	`, msg)
	return translate(err, "message")
}

// ListMessages returns a chat's messages, oldest first
func (r *ChatRepositoryImpl) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.SelectContext(ctx, &msgs, r.db.Rebind(`
		SELECT id, chat_id, sender_id, recipient_id, text, post_time
		FROM messages
		WHERE chat_id = ?
		ORDER BY post_time, id
	`), chatID)
	if err != nil {
		return nil, translate(err, "messages")
	}
	return msgs, nil
}

// TouchTimeCheck records that the user has seen the chat at the given time
func (r *ChatRepositoryImpl) TouchTimeCheck(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO last_checked (chat_id, user_id, checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET checked_at = excluded.checked_at
	`), chatID, userID, at.UTC())
	return translate(err, "time check")
}

// summaryRow is the flat shape of one inbox query row
type summaryRow struct {
	ChatID         uuid.UUID    `db:"chat_id"`
	User1ID        uuid.UUID    `db:"user_1_id"`
	User2ID        uuid.UUID    `db:"user_2_id"`
	ChatCreatedAt  time.Time    `db:"chat_created_at"`
	MessageID      uuid.UUID    `db:"message_id"`
	SenderID       uuid.UUID    `db:"sender_id"`
	RecipientID    uuid.UUID    `db:"recipient_id"`
	Text           string       `db:"text"`
	PostTime       time.Time    `db:"post_time"`
	OtherID        uuid.UUID    `db:"other_id"`
	FirstName      string       `db:"first_name"`
	LastName       string       `db:"last_name"`
	Email          string       `db:"email"`
	Username       *string      `db:"username"`
	OtherCreatedAt time.Time    `db:"other_created_at"`
	CheckedAt      sql.NullTime `db:"checked_at"`
}

func (row *summaryRow) summary() *models.ChatSummary {
	s := &models.ChatSummary{
		Chat: models.Chat{ID: row.ChatID, User1ID: row.User1ID, User2ID: row.User2ID, CreatedAt: row.ChatCreatedAt},
		Other: models.User{
			ID:        row.OtherID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
			Username:  row.Username,
			CreatedAt: row.OtherCreatedAt,
		},
		LastMessage: models.Message{
			ID:          row.MessageID,
			ChatID:      row.ChatID,
			SenderID:    row.SenderID,
			RecipientID: row.RecipientID,
			Text:        row.Text,
			PostTime:    row.PostTime,
		},
		CheckedAt: row.ChatCreatedAt,
	}
	if row.CheckedAt.Valid {
		s.CheckedAt = row.CheckedAt.Time
	}
	return s
}

// ListChatSummaries returns the user's non-empty chats, most recent message first
func (r *ChatRepositoryImpl) ListChatSummaries(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error) {
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT
			c.id AS chat_id, c.user_1_id, c.user_2_id, c.created_at AS chat_created_at,
			m.id AS message_id, m.sender_id, m.recipient_id, m.text, m.post_time,
			u.id AS other_id, u.first_name, u.last_name, u.email, u.username,
			u.created_at AS other_created_at,
			lc.checked_at
		FROM chats c
		JOIN messages m ON m.id = (
			SELECT m2.id FROM messages m2
			WHERE m2.chat_id = c.id
			ORDER BY m2.post_time DESC, m2.id DESC
			LIMIT 1
		)
		JOIN users u ON u.id = CASE WHEN c.user_1_id = ? THEN c.user_2_id ELSE c.user_1_id END
		LEFT JOIN last_checked lc ON lc.chat_id = c.id AND lc.user_id = ?
		WHERE c.user_1_id = ? OR c.user_2_id = ?
		ORDER BY m.post_time DESC, m.id DESC
	`), userID, userID, userID, userID)
	if err != nil {
		return nil, translate(err, "chats")
	}

	out := make([]*models.ChatSummary, len(rows))
	for i := range rows {
		out[i] = rows[i].summary()
	}
	return out, nil
}
