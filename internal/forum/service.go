// Package forum stores and edits film proposals.
package forum

import (
	"context"
	"html/template"
	"log"
	"strings"

	"filmdash/internal/errors"
	"filmdash/internal/validation"
	"filmdash/models"
	"filmdash/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
)

// Limits on proposal children
const (
	MaxCharacters = 5
	MaxGenres     = 3
)

// Form buttons
const (
	ButtonSubmit          = "Submit Proposal"
	ButtonAddCharacter    = "Add Character"
	ButtonRemoveCharacter = "Remove Character"
	ButtonAddGenre        = "Add Genre"
	ButtonRemoveGenre     = "Remove Genre"
)

// CharacterInput is one character row of the proposal form
type CharacterInput struct {
	Name        string `validate:"required,max=100" label:"Character Name"`
	Description string `validate:"required" label:"Character Description"`
}

// ProposalInput is the proposal form
type ProposalInput struct {
	Title      string           `validate:"required,max=255" label:"Title"`
	Plot       string           `validate:"required" label:"Plot"`
	Characters []CharacterInput `validate:"dive" label:"Characters"`
	Genres     []string         `validate:"dive,moviegenre" label:"Genres"`
}

// Apply performs a form button action. Add and remove stop at the limits.
// It reports whether the button submits the form.
func (in *ProposalInput) Apply(button string) bool {
	switch button {
	case ButtonAddCharacter:
		if len(in.Characters) < MaxCharacters {
			in.Characters = append(in.Characters, CharacterInput{})
		}
	case ButtonRemoveCharacter:
		if len(in.Characters) > 0 {
			in.Characters = in.Characters[:len(in.Characters)-1]
		}
	case ButtonAddGenre:
		if len(in.Genres) < MaxGenres {
			in.Genres = append(in.Genres, "")
		}
	case ButtonRemoveGenre:
		if len(in.Genres) > 0 {
			in.Genres = in.Genres[:len(in.Genres)-1]
		}
	case ButtonSubmit:
		return true
	}
	return false
}

// InputFrom prefills the edit form from a stored proposal
func InputFrom(p *models.ProposalDetail) ProposalInput {
	in := ProposalInput{Title: p.Title, Plot: p.Plot, Genres: p.GenreNames()}
	for _, c := range p.Characters {
		in.Characters = append(in.Characters, CharacterInput{Name: c.Name, Description: c.Description})
	}
	return in
}

func countError(field, message string) error {
	return &errors.AppError{
		Code:    errors.CodeValidationError,
		Message: message,
		Cause:   validation.FieldErrors{{Field: field, Tag: "count", Message: message}},
	}
}

// Validate checks fields and the character and genre limits
func (in *ProposalInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Plot = strings.TrimSpace(in.Plot)
	for i := range in.Characters {
		in.Characters[i].Name = strings.TrimSpace(in.Characters[i].Name)
		in.Characters[i].Description = strings.TrimSpace(in.Characters[i].Description)
	}
	switch n := len(in.Characters); {
	case n > MaxCharacters:
		return countError("Characters", "5 characters per proposal is the limit.")
	case n == 0:
		return countError("Characters", "At least 1 character needs to be defined.")
	}
	switch n := len(in.Genres); {
	case n > MaxGenres:
		return countError("Genres", "3 genres per proposal is the limit.")
	case n == 0:
		return countError("Genres", "At least 1 genre needs to be defined")
	}
	return validation.Struct(in)
}

func (in *ProposalInput) apply(p *models.ProposalDetail) {
	p.Title = in.Title
	p.Plot = in.Plot
	p.Characters = make([]*models.Character, len(in.Characters))
	for i, c := range in.Characters {
		p.Characters[i] = &models.Character{Name: c.Name, Description: c.Description}
	}
	p.Genres = make([]*models.ProposalGenre, len(in.Genres))
	for i, g := range in.Genres {
		p.Genres[i] = &models.ProposalGenre{Name: g}
	}
}

// Service implements the forum operations
type Service struct {
	proposals ports.ProposalRepository
}

// NewService creates a forum service
func NewService(proposals ports.ProposalRepository) *Service {
	return &Service{proposals: proposals}
}

// CreateProposal validates and stores a new proposal for userID
func (s *Service) CreateProposal(ctx context.Context, userID uuid.UUID, in ProposalInput) (*models.ProposalDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &models.ProposalDetail{Proposal: models.Proposal{UserID: userID}}
	in.apply(p)
	if err := s.proposals.CreateProposal(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to create proposal")
	}
	log.Printf("[Forum] Proposal %s created by %s", p.ID, userID)
	return p, nil
}

// ListProposals returns every proposal, newest first
func (s *Service) ListProposals(ctx context.Context) ([]*models.ProposalSummary, error) {
	return s.proposals.ListProposals(ctx)
}

// ListUserProposals returns one member's proposals, newest first
func (s *Service) ListUserProposals(ctx context.Context, userID uuid.UUID) ([]*models.ProposalSummary, error) {
	return s.proposals.ListProposalsByUser(ctx, userID)
}

// GetProposal loads a proposal with its author and children
func (s *Service) GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	return s.proposals.GetProposal(ctx, id)
}

// Editable loads a proposal and checks that userID wrote it
func (s *Service) Editable(ctx context.Context, userID, id uuid.UUID) (*models.ProposalDetail, error) {
	p, err := s.proposals.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, errors.Forbidden("proposal was posted by another user")
	}
	return p, nil
}

// EditProposal replaces the proposal's content. Only its author may edit it.
func (s *Service) EditProposal(ctx context.Context, userID, id uuid.UUID, in ProposalInput) (*models.ProposalDetail, error) {
	p, err := s.Editable(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.proposals.UpdateProposal(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to update proposal")
	}
	return p, nil
}

// RenderPlot turns a markdown plot into HTML. Raw HTML in the source is
// dropped and links are limited to safe protocols.
func RenderPlot(plot string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(plot))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.HrefTargetBlank,
	})
	return template.HTML(markdown.Render(doc, renderer))
}
