// Package ui is the gin web front end: account pages, the dashboard pages,
// the proposal forum and member messaging.
package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"filmdash/internal/api"
	"filmdash/internal/auth"
	"filmdash/internal/config"
	"filmdash/internal/forum"
	"filmdash/internal/messaging"
	"filmdash/models"
	"filmdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Services are the application services the handlers call
type Services struct {
	Auth      *auth.Service
	Forum     *forum.Service
	Messaging *messaging.Service
	Dashboard api.SnapshotSource
}

// Server represents the web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	files     fs.FS
	services  Services
	session   config.AuthConfig
}

// NewServer parses the templates under ui/templates in files, serves
// ui/static and registers every route
func NewServer(files fs.FS, services Services, session config.AuthConfig) (*Server, error) {
	s := &Server{
		router:   gin.Default(),
		files:    files,
		services: services,
		session:  session,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":  func(a, b int) int { return a + b },
		"plot": forum.RenderPlot,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"name": func(u *models.User) string {
			if u == nil {
				return "Unknown member"
			}
			return u.DisplayName()
		},
		"join":   strings.Join,
		"genres": func() []string { return forum.Genres },
	}
}

func (s *Server) parseTemplates() error {
	templatesFS, err := fs.Sub(s.files, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found under ui/templates")
	}

	s.templates = template.New("").Funcs(templateFuncs())
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	log.Printf("[TemplateInit] Parsed %d templates", len(files))
	return nil
}

func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(s.files, "ui/static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	s.router.Use(middleware.LoadUser(s.services.Auth, s.session.CookieName))
	return nil
}

func (s *Server) setupRoutes() {
	members := middleware.RequireLogin("/auth/login")

	s.router.GET("/", members, s.handleHome)

	authGroup := s.router.Group("/auth")
	authGroup.GET("/signup", s.handleSignupForm)
	authGroup.POST("/signup", s.handleSignup)
	authGroup.GET("/login", s.handleLoginForm)
	authGroup.POST("/login", s.handleLogin)
	authGroup.GET("/logout", s.handleLogout)
	authGroup.POST("/logout", s.handleLogout)

	s.router.GET("/profile", members, s.handleProfile)
	s.router.POST("/profile", members, s.handleUpdateProfile)

	dash := s.router.Group("/dash_app")
	dash.GET("/", s.handleDashboard)
	for _, page := range graphPages {
		dash.GET("/"+page.Slug, s.handleGraphPage(page))
	}
	dash.GET("/assets/:image", s.handleThumbnail)

	forumGroup := s.router.Group("/", members)
	forumGroup.GET("/create_proposal", s.handleCreateProposal)
	forumGroup.POST("/create_proposal", s.handleCreateProposal)
	forumGroup.GET("/display_proposals", s.handleProposals)
	forumGroup.GET("/display_proposals/:id", s.handleProposal)
	forumGroup.GET("/my_proposals", s.handleMyProposals)
	forumGroup.GET("/edit_proposal/:id", s.handleEditProposal)
	forumGroup.POST("/edit_proposal/:id", s.handleEditProposal)

	forumGroup.GET("/send_message/:user_id", s.handleConversation)
	forumGroup.POST("/send_message/:user_id", s.handleSendMessage)
	forumGroup.GET("/view_messages", s.handleInbox)
	forumGroup.POST("/view_messages", s.handleFindUser)

	chartAPI := api.Router(api.NewChartHandler(s.services.Dashboard))
	s.router.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", chartAPI)))

	s.router.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "Page not found")
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting filmdash on http://%s", addr)
	return s.router.Run(addr)
}
