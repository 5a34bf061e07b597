package ports

import (
	"context"

	"filmdash/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// CreateUser inserts a user, assigning ID and CreatedAt. A taken email is a CONFLICT.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetUserByEmail retrieves a user by email, case-insensitively
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUsername sets the public username. A taken username is a CONFLICT.
	UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error

	// ListUsers returns all users ordered by name
	ListUsers(ctx context.Context) ([]*models.User, error)
}
