package ui

import (
	"net/http"

	"filmdash/internal/errors"
	"filmdash/internal/messaging"
	"filmdash/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgMemberMissing = "That member does not exist"
	msgChatYourself  = "You cannot send messages to yourself"
)

// chatFailed turns the expected conversation errors into a flash on the inbox.
// It reports whether the error was handled.
func (s *Server) chatFailed(c *gin.Context, err error) bool {
	var message string
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		message = msgMemberMissing
	case errors.CodeInvalidInput:
		message = msgChatYourself
	default:
		return false
	}
	middleware.SetFlash(c, middleware.FlashWarning, message)
	s.redirect(c, "/view_messages")
	return true
}

func (s *Server) otherMember(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		middleware.SetFlash(c, middleware.FlashWarning, msgMemberMissing)
		s.redirect(c, "/view_messages")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) renderConversation(c *gin.Context, status int, other uuid.UUID, form messaging.MessageInput, sendErr error) {
	user := middleware.CurrentUser(c)
	conv, err := s.services.Messaging.Conversation(c.Request.Context(), user.ID, other)
	if err != nil {
		if !s.chatFailed(c, err) {
			s.fail(c, err)
		}
		return
	}

	data := gin.H{
		"Conversation": conv,
		"Me":           user.ID,
		"Form":         form,
	}
	if sendErr != nil {
		errs, messages, _ := formErrors(sendErr)
		data["Errors"] = errs
		data["Messages"] = messages
	}
	s.renderTemplate(c, status, "send_message.html", s.page(c, "Chat with "+conv.Other.DisplayName(), data))
}

func (s *Server) handleConversation(c *gin.Context) {
	other, ok := s.otherMember(c)
	if !ok {
		return
	}
	s.renderConversation(c, http.StatusOK, other, messaging.MessageInput{}, nil)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	other, ok := s.otherMember(c)
	if !ok {
		return
	}
	var in messaging.MessageInput
	if err := c.ShouldBind(&in); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form")
		return
	}

	user := middleware.CurrentUser(c)
	if _, err := s.services.Messaging.Send(c.Request.Context(), user.ID, other, in); err != nil {
		switch {
		case errors.HasCode(err, errors.CodeValidationError):
			s.renderConversation(c, http.StatusUnprocessableEntity, other, in, err)
		case !s.chatFailed(c, err):
			s.fail(c, err)
		}
		return
	}
	s.redirect(c, "/send_message/"+other.String())
}

func (s *Server) handleInbox(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	inbox, err := s.services.Messaging.Inbox(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	contacts, err := s.services.Messaging.Contacts(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, "view_messages.html", s.page(c, "Messages", gin.H{
		"Inbox":    inbox,
		"Contacts": contacts,
	}))
}

// handleFindUser answers the member picker on the inbox page
func (s *Server) handleFindUser(c *gin.Context) {
	id, err := uuid.Parse(c.PostForm("user_id"))
	if err != nil {
		middleware.SetFlash(c, middleware.FlashWarning, "Please choose a member to message")
		s.redirect(c, "/view_messages")
		return
	}
	s.redirect(c, "/send_message/"+id.String())
}
