package ui

import (
	"net/http"

	"filmdash/internal/errors"
	"filmdash/internal/forum"
	"filmdash/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgProposalMissing  = "The proposal the user is looking for does not exist"
	msgProposalNotYours = "The proposal that the user is trying to edit does not exist/was not posted by the current user."
)

// proposalForm reads the proposal form. Character rows arrive as parallel
// name and description arrays.
func proposalForm(c *gin.Context) (forum.ProposalInput, string) {
	in := forum.ProposalInput{
		Title:  c.PostForm("title"),
		Plot:   c.PostForm("plot"),
		Genres: c.PostFormArray("genre"),
	}
	names := c.PostFormArray("character_name")
	descriptions := c.PostFormArray("character_description")
	for i, name := range names {
		var description string
		if i < len(descriptions) {
			description = descriptions[i]
		}
		in.Characters = append(in.Characters, forum.CharacterInput{Name: name, Description: description})
	}
	return in, c.PostForm("button")
}

func (s *Server) renderProposalForm(c *gin.Context, status int, heading, action string, in forum.ProposalInput, err error) {
	data := gin.H{
		"Heading":       heading,
		"Action":        action,
		"Form":          in,
		"MaxCharacters": forum.MaxCharacters,
		"MaxGenres":     forum.MaxGenres,
	}
	if err != nil {
		errs, messages, _ := formErrors(err)
		data["Errors"] = errs
		data["Messages"] = messages
	}
	s.renderTemplate(c, status, "proposal_form.html", s.page(c, heading, data))
}

func (s *Server) handleCreateProposal(c *gin.Context) {
	const heading = "Create a Proposal"
	if c.Request.Method == http.MethodGet {
		in := forum.ProposalInput{Characters: []forum.CharacterInput{{}}, Genres: []string{""}}
		s.renderProposalForm(c, http.StatusOK, heading, "/create_proposal", in, nil)
		return
	}

	in, button := proposalForm(c)
	if !in.Apply(button) {
		s.renderProposalForm(c, http.StatusOK, heading, "/create_proposal", in, nil)
		return
	}

	user := middleware.CurrentUser(c)
	if _, err := s.services.Forum.CreateProposal(c.Request.Context(), user.ID, in); err != nil {
		if !errors.HasCode(err, errors.CodeValidationError) {
			s.fail(c, err)
			return
		}
		s.renderProposalForm(c, http.StatusUnprocessableEntity, heading, "/create_proposal", in, err)
		return
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Your proposal has been submitted.")
	s.redirect(c, "/")
}

func (s *Server) handleProposals(c *gin.Context) {
	proposals, err := s.services.Forum.ListProposals(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "proposals.html", s.page(c, "Proposals", gin.H{
		"Heading":   "All Proposals",
		"Proposals": proposals,
	}))
}

func (s *Server) handleMyProposals(c *gin.Context) {
	user := middleware.CurrentUser(c)
	proposals, err := s.services.Forum.ListUserProposals(c.Request.Context(), user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "proposals.html", s.page(c, "My Proposals", gin.H{
		"Heading":   "My Proposals",
		"Proposals": proposals,
		"Mine":      true,
	}))
}

func (s *Server) handleProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.SetFlash(c, middleware.FlashWarning, msgProposalMissing)
		s.redirect(c, "/display_proposals")
		return
	}

	p, err := s.services.Forum.GetProposal(c.Request.Context(), id)
	if errors.HasCode(err, errors.CodeNotFound) {
		middleware.SetFlash(c, middleware.FlashWarning, msgProposalMissing)
		s.redirect(c, "/display_proposals")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	s.renderTemplate(c, http.StatusOK, "proposal.html", s.page(c, p.Title, gin.H{
		"Proposal": p,
		"Mine":     p.UserID == user.ID,
	}))
}

func (s *Server) handleEditProposal(c *gin.Context) {
	const heading = "Edit Proposal"
	user := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.SetFlash(c, middleware.FlashWarning, msgProposalNotYours)
		s.redirect(c, "/my_proposals")
		return
	}
	action := "/edit_proposal/" + id.String()

	p, err := s.services.Forum.Editable(c.Request.Context(), user.ID, id)
	if errors.HasCode(err, errors.CodeNotFound) || errors.HasCode(err, errors.CodeForbidden) {
		middleware.SetFlash(c, middleware.FlashWarning, msgProposalNotYours)
		s.redirect(c, "/my_proposals")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.Request.Method == http.MethodGet {
		s.renderProposalForm(c, http.StatusOK, heading, action, forum.InputFrom(p), nil)
		return
	}

	in, button := proposalForm(c)
	if !in.Apply(button) {
		s.renderProposalForm(c, http.StatusOK, heading, action, in, nil)
		return
	}

	if _, err := s.services.Forum.EditProposal(c.Request.Context(), user.ID, id, in); err != nil {
		if !errors.HasCode(err, errors.CodeValidationError) {
			s.fail(c, err)
			return
		}
		s.renderProposalForm(c, http.StatusUnprocessableEntity, heading, action, in, err)
		return
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Your proposal has been updated.")
	s.redirect(c, "/my_proposals")
}
