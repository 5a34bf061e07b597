package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal is a member's pitch for a film
type Proposal struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Plot      string    `json:"plot" db:"plot"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Character belongs to a proposal; Position keeps form order
type Character struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProposalID  uuid.UUID `json:"proposal_id" db:"proposal_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Position    int       `json:"position" db:"position"`
}

// ProposalGenre is one genre tag of a proposal
type ProposalGenre struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProposalID uuid.UUID `json:"proposal_id" db:"proposal_id"`
	Name       string    `json:"name" db:"name"`
	Position   int       `json:"position" db:"position"`
}

// ProposalDetail is a proposal with its children and author
type ProposalDetail struct {
	Proposal
	Author     *User            `json:"author,omitempty"`
	Characters []*Character     `json:"characters"`
	Genres     []*ProposalGenre `json:"genres"`
}

// GenreNames lists the genre tags in order
func (p *ProposalDetail) GenreNames() []string {
	out := make([]string, len(p.Genres))
	for i, g := range p.Genres {
		out[i] = g.Name
	}
	return out
}

// ProposalSummary is a listing row
type ProposalSummary struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Title           string    `json:"title" db:"title"`
	AuthorFirstName string    `json:"author_first_name" db:"first_name"`
	AuthorLastName  string    `json:"author_last_name" db:"last_name"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
