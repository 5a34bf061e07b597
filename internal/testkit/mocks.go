package testkit

import (
	"context"
	"time"

	"filmdash/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	return m.Called(ctx, userID, username).Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

// MockProposalRepository is a testify mock of ports.ProposalRepository
type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) CreateProposal(ctx context.Context, p *models.ProposalDetail) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProposalRepository) GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.ProposalDetail)
	return p, args.Error(1)
}

func (m *MockProposalRepository) ListProposals(ctx context.Context) ([]*models.ProposalSummary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.ProposalSummary)
	return out, args.Error(1)
}

func (m *MockProposalRepository) ListProposalsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ProposalSummary, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*models.ProposalSummary)
	return out, args.Error(1)
}

func (m *MockProposalRepository) UpdateProposal(ctx context.Context, p *models.ProposalDetail) error {
	return m.Called(ctx, p).Error(0)
}

// MockChatRepository is a testify mock of ports.ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) FindChat(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	args := m.Called(ctx, a, b)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockChatRepository) CreateChat(ctx context.Context, a, b uuid.UUID, at time.Time) (*models.Chat, error) {
	args := m.Called(ctx, a, b, at)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockChatRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	args := m.Called(ctx, chatID)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func (m *MockChatRepository) TouchTimeCheck(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	return m.Called(ctx, chatID, userID, at).Error(0)
}

func (m *MockChatRepository) ListChatSummaries(ctx context.Context, userID uuid.UUID) ([]*models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*models.ChatSummary)
	return out, args.Error(1)
}
