package postgres

import (
	"context"
	"time"

	"filmdash/internal/errors"
	"filmdash/models"
	"filmdash/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ProposalRepositoryImpl implements ProposalRepository over sqlx
type ProposalRepositoryImpl struct {
	db *sqlx.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *sqlx.DB) ports.ProposalRepository {
	return &ProposalRepositoryImpl{db: db}
}

// inTx runs fn in a transaction, rolling back on error
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return translate(err, "transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(err, "transaction")
	}
	return nil
}

// CreateProposal inserts a proposal with its characters and genres
func (r *ProposalRepositoryImpl) CreateProposal(ctx context.Context, p *models.ProposalDetail) error {
	now := time.Now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now

	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO proposals (id, user_id, title, plot, created_at, updated_at)
			VALUES (:id, :user_id, :title, :plot, :created_at, :updated_at)
		`, &p.Proposal)
		if err != nil {
			return translate(err, "proposal")
		}
		for i, c := range p.Characters {
			if err := insertCharacter(ctx, tx, p.ID, i, c); err != nil {
				return err
			}
		}
		for i, g := range p.Genres {
			if err := insertGenre(ctx, tx, p.ID, i, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertCharacter(ctx context.Context, tx *sqlx.Tx, proposalID uuid.UUID, pos int, c *models.Character) error {
	c.ID = uuid.New()
	c.ProposalID = proposalID
	c.Position = pos
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO characters (id, proposal_id, name, description, position)
		VALUES (:id, :proposal_id, :name, :description, :position)
	`, c)
	return translate(err, "character")
}

func insertGenre(ctx context.Context, tx *sqlx.Tx, proposalID uuid.UUID, pos int, g *models.ProposalGenre) error {
	g.ID = uuid.New()
	g.ProposalID = proposalID
	g.Position = pos
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO proposal_genres (id, proposal_id, name, position)
		VALUES (:id, :proposal_id, :name, :position)
	`, g)
	return translate(err, "genre")
}

// GetProposal loads a proposal with author, characters and genres
func (r *ProposalRepositoryImpl) GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	var p models.ProposalDetail
	err := r.db.GetContext(ctx, &p.Proposal, r.db.Rebind(`
		SELECT id, user_id, title, plot, created_at, updated_at
		FROM proposals
		WHERE id = ?
	`), id)
	if err != nil {
		return nil, translate(err, "proposal")
	}

	var author models.User
	err = r.db.GetContext(ctx, &author, r.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE id = ?
	`), p.UserID)
	if err != nil {
		return nil, translate(err, "proposal author")
	}
	p.Author = &author

	err = r.db.SelectContext(ctx, &p.Characters, r.db.Rebind(`
		SELECT id, proposal_id, name, description, position
		FROM characters
		WHERE proposal_id = ?
		ORDER BY position
	`), id)
	if err != nil {
		return nil, translate(err, "characters")
	}

	err = r.db.SelectContext(ctx, &p.Genres, r.db.Rebind(`
		SELECT id, proposal_id, name, position
		FROM proposal_genres
		WHERE proposal_id = ?
		ORDER BY position
	`), id)
	if err != nil {
		return nil, translate(err, "genres")
	}

	return &p, nil
}

const summaryQuery = `
	SELECT p.id, p.user_id, p.title, u.first_name, u.last_name, p.created_at
	FROM proposals p
	JOIN users u ON u.id = p.user_id`

// ListProposals returns every proposal, newest first
func (r *ProposalRepositoryImpl) ListProposals(ctx context.Context) ([]*models.ProposalSummary, error) {
	var out []*models.ProposalSummary
	err := r.db.SelectContext(ctx, &out, summaryQuery+`
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, translate(err, "proposals")
	}
	return out, nil
}

// ListProposalsByUser returns a member's proposals, newest first
func (r *ProposalRepositoryImpl) ListProposalsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ProposalSummary, error) {
	var out []*models.ProposalSummary
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(summaryQuery+`
		WHERE p.user_id = ?
		ORDER BY p.created_at DESC`), userID)
	if err != nil {
		return nil, translate(err, "proposals")
	}
	return out, nil
}

// UpdateProposal rewrites the proposal and reconciles its children: rows at
// existing positions are updated, extra entries inserted, surplus rows deleted.
func (r *ProposalRepositoryImpl) UpdateProposal(ctx context.Context, p *models.ProposalDetail) error {
	p.UpdatedAt = time.Now().UTC()

	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE proposals SET title = ?, plot = ?, updated_at = ? WHERE id = ?
		`), p.Title, p.Plot, p.UpdatedAt, p.ID)
		if err != nil {
			return translate(err, "proposal")
		}
		if err := expectOne(res, "proposal"); err != nil {
			return err
		}

		if err := r.reconcileCharacters(ctx, tx, p); err != nil {
			return errors.Wrap(err, "failed to reconcile characters")
		}
		if err := r.reconcileGenres(ctx, tx, p); err != nil {
			return errors.Wrap(err, "failed to reconcile genres")
		}
		return nil
	})
}

func existingIDs(ctx context.Context, tx *sqlx.Tx, table string, proposalID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.SelectContext(ctx, &ids, tx.Rebind(`
		SELECT id FROM `+table+` WHERE proposal_id = ? ORDER BY position
	`), proposalID)
	return ids, translate(err, table)
}

func deleteSurplus(ctx context.Context, tx *sqlx.Tx, table string, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id); err != nil {
			return translate(err, table)
		}
	}
	return nil
}

func (r *ProposalRepositoryImpl) reconcileCharacters(ctx context.Context, tx *sqlx.Tx, p *models.ProposalDetail) error {
	ids, err := existingIDs(ctx, tx, "characters", p.ID)
	if err != nil {
		return err
	}
	for i, c := range p.Characters {
		if i >= len(ids) {
			if err := insertCharacter(ctx, tx, p.ID, i, c); err != nil {
				return err
			}
			continue
		}
		c.ID, c.ProposalID, c.Position = ids[i], p.ID, i
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE characters SET name = ?, description = ?, position = ? WHERE id = ?
		`), c.Name, c.Description, i, c.ID)
		if err != nil {
			return translate(err, "character")
		}
	}
	if len(ids) > len(p.Characters) {
		return deleteSurplus(ctx, tx, "characters", ids[len(p.Characters):])
	}
	return nil
}

func (r *ProposalRepositoryImpl) reconcileGenres(ctx context.Context, tx *sqlx.Tx, p *models.ProposalDetail) error {
	ids, err := existingIDs(ctx, tx, "proposal_genres", p.ID)
	if err != nil {
		return err
	}
	for i, g := range p.Genres {
		if i >= len(ids) {
			if err := insertGenre(ctx, tx, p.ID, i, g); err != nil {
				return err
			}
			continue
		}
		g.ID, g.ProposalID, g.Position = ids[i], p.ID, i
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE proposal_genres SET name = ?, position = ? WHERE id = ?
		`), g.Name, i, g.ID)
		if err != nil {
			return translate(err, "genre")
		}
	}
	if len(ids) > len(p.Genres) {
		return deleteSurplus(ctx, tx, "proposal_genres", ids[len(p.Genres):])
	}
	return nil
}
