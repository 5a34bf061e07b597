package container

import (
	"context"
	"fmt"
	"log"

	"filmdash/adapters/postgres"
	"filmdash/internal/auth"
	"filmdash/internal/config"
	"filmdash/internal/dashboard"
	"filmdash/internal/forum"
	"filmdash/internal/messaging"
	"filmdash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	UserRepo     ports.UserRepository
	ProposalRepo ports.ProposalRepository
	ChatRepo     ports.ChatRepository

	// Services
	Tokens    *auth.TokenManager
	Auth      *auth.Service
	Forum     *forum.Service
	Messaging *messaging.Service

	// Dashboard pipeline; built in the background once Start is called
	Dashboard *dashboard.Dashboard
}

// New creates a new dependency injection container. The dashboard does not
// need the database, so it is wired here.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:    cfg,
		Dashboard: dashboard.New(dashboard.FileSource(cfg.Data.DatasetFile), cfg.ChartOptions()),
	}
	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	log.Printf("Container initialized successfully with %s database", db.DriverName())
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = postgres.NewUserRepository(c.DB)
	c.ProposalRepo = postgres.NewProposalRepository(c.DB)
	c.ChatRepo = postgres.NewChatRepository(c.DB)
}

func (c *Container) initServices() error {
	tokens, err := auth.NewTokenManager(c.Config.Auth.JWTSecret, c.Config.Auth.SessionTimeout, c.Config.Auth.RememberFor)
	if err != nil {
		return err
	}
	c.Tokens = tokens
	c.Auth = auth.NewService(c.UserRepo, tokens)
	c.Forum = forum.NewService(c.ProposalRepo)
	c.Messaging = messaging.NewService(c.ChatRepo, c.UserRepo)
	return nil
}

// Shutdown closes the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
