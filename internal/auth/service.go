// Package auth handles sign-up, login, session tokens and the member profile.
package auth

import (
	"context"
	"log"
	"strings"
	"time"

	"filmdash/internal/errors"
	"filmdash/internal/validation"
	"filmdash/models"
	"filmdash/ports"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Form messages shown next to the offending field
const (
	MsgEmailTaken      = "An account is already registered for that email address"
	MsgEmailUnknown    = "That email address is not registered"
	MsgWrongPassword   = "The password is incorrect"
	MsgUsernameTaken   = "An account is already registered with that username"
	MsgPasswordsDiffer = "Passwords must match"
)

// SignupRequest is the sign-up form
type SignupRequest struct {
	FirstName      string `form:"first_name" validate:"required,max=100" label:"First name"`
	LastName       string `form:"last_name" validate:"required,max=100" label:"Last name"`
	Email          string `form:"email" validate:"required,email,max=255" label:"Email address"`
	Password       string `form:"password" validate:"required" label:"Password"`
	PasswordRepeat string `form:"password_repeat" validate:"required" label:"Repeat Password"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Email      string `form:"email" validate:"required,email" label:"Email address"`
	Password   string `form:"password" validate:"required" label:"Password"`
	RememberMe bool   `form:"remember_me"`
}

// UsernameRequest is the profile form
type UsernameRequest struct {
	Username string `form:"username" validate:"required,max=100" label:"Username"`
}

// Session is the result of a successful login
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
	Remember  bool
}

// Service implements the account operations
type Service struct {
	users  ports.UserRepository
	tokens *TokenManager
	cost   int
}

// NewService creates an account service
func NewService(users ports.UserRepository, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// fieldError builds a VALIDATION_ERROR that forms can attach to one field
func fieldError(field, message string) error {
	return &errors.AppError{
		Code:    errors.CodeValidationError,
		Message: message,
		Cause:   validation.FieldErrors{{Field: field, Tag: "custom", Message: message}},
	}
}

// Signup validates the form, hashes the password and stores the user
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordRepeat {
		return nil, fieldError("Repeat Password", MsgPasswordsDiffer)
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fieldError("Email address", MsgEmailTaken)
	} else if !errors.HasCode(err, errors.CodeNotFound) {
		return nil, errors.Wrap(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.HasCode(err, errors.CodeConflict) {
			return nil, fieldError("Email address", MsgEmailTaken)
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	log.Printf("[Auth] New account %s", user.ID)
	return user, nil
}

// Login checks credentials and issues a session token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.HasCode(err, errors.CodeNotFound) {
		return nil, fieldError("Email address", MsgEmailUnknown)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fieldError("Password", MsgWrongPassword)
	}

	token, expires, err := s.tokens.Issue(user.ID, req.RememberMe)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expires, Remember: req.RememberMe}, nil
}

// Authenticate resolves a session token to its user ID
func (s *Service) Authenticate(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errors.Unauthorized("You must be logged in to view that page.")
	}
	return s.tokens.Verify(token)
}

// CurrentUser loads the user a token belongs to
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	id, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, id)
	if errors.HasCode(err, errors.CodeNotFound) {
		return nil, errors.Unauthorized("account no longer exists")
	}
	return user, err
}

// Profile returns a member's account
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// UpdateUsername sets the public username; names are unique
func (s *Service) UpdateUsername(ctx context.Context, id uuid.UUID, req UsernameRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(&req); err != nil {
		return err
	}
	err := s.users.UpdateUsername(ctx, id, req.Username)
	if errors.HasCode(err, errors.CodeConflict) {
		return fieldError("Username", MsgUsernameTaken)
	}
	return err
}
