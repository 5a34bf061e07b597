package ports

import (
	"context"

	"filmdash/models"

	"github.com/google/uuid"
)

// ProposalRepository stores proposals together with their characters and genres
type ProposalRepository interface {
	// CreateProposal inserts the proposal and its children in one transaction
	CreateProposal(ctx context.Context, proposal *models.ProposalDetail) error

	// GetProposal loads a proposal, its author and children
	GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error)

	// ListProposals returns every proposal, newest first
	ListProposals(ctx context.Context) ([]*models.ProposalSummary, error)

	// ListProposalsByUser returns one member's proposals, newest first
	ListProposalsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ProposalSummary, error)

	// UpdateProposal rewrites title and plot and reconciles children by position
	UpdateProposal(ctx context.Context, proposal *models.ProposalDetail) error
}
