package ui

import (
	"bytes"
	"log"
	"net/http"

	"filmdash/internal/errors"
	"filmdash/internal/validation"
	"filmdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// page adds what the layout needs to a handler's template data
func (s *Server) page(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Flashes"] = middleware.Flashes(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}

	user := middleware.CurrentUser(c)
	data["User"] = user
	data["UnreadMessages"] = false
	if user != nil && s.services.Messaging != nil {
		unread, err := s.services.Messaging.HasUnread(c.Request.Context(), user.ID)
		if err != nil {
			log.Printf("[UI] Failed to check unread messages for %s: %v", user.ID, err)
		}
		data["UnreadMessages"] = unread
	}
	return data
}

// renderTemplate renders into a buffer first so a failing template never
// leaves a half written page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("[UI] Template error for %s: %v", templateName, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("[UI] Error writing template response: %v", err)
	}
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	s.renderTemplate(c, status, "error.html", s.page(c, http.StatusText(status), gin.H{
		"Status":  status,
		"Message": message,
	}))
}

// fail renders the error page for errors a handler does not turn into a form message
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	message := http.StatusText(status)
	var appErr *errors.AppError
	switch {
	case errors.As(err, &appErr) && (status < http.StatusInternalServerError || appErr.Code == errors.CodeNotReady):
		message = appErr.Message
	case status >= http.StatusInternalServerError:
		log.Printf("[UI] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	s.renderError(c, status, message)
}

// formErrors turns a validation failure into label-keyed messages for a
// form. Any other error is returned unchanged.
func formErrors(err error) (map[string]string, []string, error) {
	if !errors.HasCode(err, errors.CodeValidationError) {
		return nil, nil, err
	}
	fields := validation.Fields(err)
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return fields.ByField(), messages, nil
}

func (s *Server) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
