package ui

import (
	"net/http"
	"time"

	"filmdash/internal/auth"
	"filmdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHome(c *gin.Context) {
	user := middleware.CurrentUser(c)
	s.renderTemplate(c, http.StatusOK, "index.html", s.page(c, "Home", gin.H{
		"Greeting": "Hello " + user.FirstName + ".",
	}))
}

func (s *Server) handleSignupForm(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "signup.html", s.page(c, "Sign up", gin.H{
		"Form": auth.SignupRequest{},
	}))
}

func (s *Server) handleSignup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form")
		return
	}

	if _, err := s.services.Auth.Signup(c.Request.Context(), req); err != nil {
		errs, messages, err := formErrors(err)
		if err != nil {
			s.fail(c, err)
			return
		}
		req.Password, req.PasswordRepeat = "", ""
		s.renderTemplate(c, http.StatusUnprocessableEntity, "signup.html", s.page(c, "Sign up", gin.H{
			"Form":     req,
			"Errors":   errs,
			"Messages": messages,
		}))
		return
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Your account has been created. Please log in.")
	s.redirect(c, "/auth/login")
}

func (s *Server) handleLoginForm(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		s.redirect(c, "/")
		return
	}
	s.renderTemplate(c, http.StatusOK, "login.html", s.page(c, "Log in", gin.H{
		"Form": auth.LoginRequest{},
		"Next": c.Query("next"),
	}))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form")
		return
	}
	next := c.PostForm("next")

	session, err := s.services.Auth.Login(c.Request.Context(), req)
	if err != nil {
		errs, messages, err := formErrors(err)
		if err != nil {
			s.fail(c, err)
			return
		}
		req.Password = ""
		s.renderTemplate(c, http.StatusUnprocessableEntity, "login.html", s.page(c, "Log in", gin.H{
			"Form":     req,
			"Next":     next,
			"Errors":   errs,
			"Messages": messages,
		}))
		return
	}

	s.setSessionCookie(c, session)
	if next != "" && auth.SafeRedirect(c.Request.Host, next) {
		s.redirect(c, next)
		return
	}
	s.redirect(c, "/")
}

// setSessionCookie stores the token. Without remember-me the cookie ends
// with the browser session; the token itself still expires on its own.
func (s *Server) setSessionCookie(c *gin.Context, session *auth.Session) {
	maxAge := 0
	if session.Remember {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.session.CookieName, session.Token, maxAge, "/", "", s.session.SecureCookie, true)
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.session.CookieName, "", -1, "/", "", s.session.SecureCookie, true)
	middleware.SetFlash(c, middleware.FlashInfo, "You have been logged out.")
	s.redirect(c, "/auth/login")
}

func (s *Server) handleProfile(c *gin.Context) {
	user, err := s.services.Auth.Profile(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	form := auth.UsernameRequest{}
	if user.Username != nil {
		form.Username = *user.Username
	}
	s.renderTemplate(c, http.StatusOK, "profile.html", s.page(c, "Profile", gin.H{
		"Profile": user,
		"Form":    form,
	}))
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var req auth.UsernameRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, "Malformed form")
		return
	}

	if err := s.services.Auth.UpdateUsername(c.Request.Context(), user.ID, req); err != nil {
		errs, messages, err := formErrors(err)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.renderTemplate(c, http.StatusUnprocessableEntity, "profile.html", s.page(c, "Profile", gin.H{
			"Profile":  user,
			"Form":     req,
			"Errors":   errs,
			"Messages": messages,
		}))
		return
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Your username has been updated.")
	s.redirect(c, "/profile")
}
