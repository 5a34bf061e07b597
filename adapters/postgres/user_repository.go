package postgres

import (
	"context"
	"strings"
	"time"

	"filmdash/models"
	"filmdash/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, first_name, last_name, email, password_hash, username, created_at`

// UserRepositoryImpl implements UserRepository over sqlx
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// CreateUser creates a new user
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, username, created_at)
		VALUES (:id, :first_name, :last_name, :email, :password_hash, :username, :created_at)
	`, user)
	return translate(err, "user")
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`), userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER(?)
	`), strings.TrimSpace(email))
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// UpdateUsername sets the public username
func (r *UserRepositoryImpl) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET username = ? WHERE id = ?
	`), username, userID)
	if err != nil {
		return translate(err, "username")
	}
	return expectOne(res, "user")
}

// ListUsers returns all users
func (r *UserRepositoryImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY first_name, last_name, email
	`)
	if err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}
