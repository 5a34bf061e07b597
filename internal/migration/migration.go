package migration

import (
	"context"
	"fmt"
	"log"

	"filmdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Tables in dependency order; Reset drops them in reverse
var Tables = []string{
	"users",
	"proposals",
	"characters",
	"proposal_genres",
	"chats",
	"messages",
	"last_checked",
}

// timestampType returns a column type the driver maps back to time.Time
func timestampType(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return "TIMESTAMP WITH TIME ZONE"
	}
	return "TIMESTAMP"
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	ts := timestampType(db)

	steps := []struct {
		name string
		ddl  string
	}{
		{"users", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				first_name VARCHAR(100) NOT NULL,
				last_name VARCHAR(100) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				username VARCHAR(100) UNIQUE,
				created_at %s NOT NULL
			)`, ts)},
		{"proposals", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS proposals (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				plot TEXT NOT NULL,
				created_at %s NOT NULL,
				updated_at %s NOT NULL
			)`, ts, ts)},
		{"characters", `
			CREATE TABLE IF NOT EXISTS characters (
				id TEXT PRIMARY KEY,
				proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
				name VARCHAR(100) NOT NULL,
				description TEXT NOT NULL,
				position INTEGER NOT NULL
			)`},
		{"proposal_genres", `
			CREATE TABLE IF NOT EXISTS proposal_genres (
				id TEXT PRIMARY KEY,
				proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
				name VARCHAR(50) NOT NULL,
				position INTEGER NOT NULL
			)`},
		{"chats", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chats (
				id TEXT PRIMARY KEY,
				user_1_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				user_2_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at %s NOT NULL,
				UNIQUE (user_1_id, user_2_id)
			)`, ts)},
		{"messages", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
				sender_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				text TEXT NOT NULL,
				post_time %s NOT NULL
			)`, ts)},
		{"last_checked", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS last_checked (
				chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				checked_at %s NOT NULL,
				PRIMARY KEY (chat_id, user_id)
			)`, ts)},
	}

	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s table", step.name)
		}
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	log.Printf("[Migration] Schema %s applied (%s)", r.version, db.DriverName())
	return nil
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_proposals_user_id ON proposals(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_characters_proposal_id ON characters(proposal_id)",
		"CREATE INDEX IF NOT EXISTS idx_proposal_genres_proposal_id ON proposal_genres(proposal_id)",
		"CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, post_time)",
	}
	for _, ddl := range indexes {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every table so the next Run starts from scratch
func Reset(ctx context.Context, db *sqlx.DB) error {
	log.Println("[Migration] Resetting database - dropping all tables...")
	cascade := ""
	if db.DriverName() == "postgres" {
		cascade = " CASCADE"
	}
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s%s", Tables[i], cascade)); err != nil {
			return errors.Wrapf(err, "failed to drop table %s", Tables[i])
		}
	}
	return nil
}
