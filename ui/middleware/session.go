// Package middleware holds the gin middleware for sessions and flash messages.
package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"filmdash/internal/errors"
	"filmdash/models"

	"github.com/gin-gonic/gin"
)

const userKey = "filmdash.user"

// LoginRequiredMessage is flashed when an anonymous visitor hits a members page
const LoginRequiredMessage = "You must be logged in to view that page."

// Authenticator resolves a session token to its user
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// LoadUser reads the session cookie and stores the user on the context.
// Requests without a valid cookie continue anonymously and a stale cookie is cleared.
func LoadUser(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if !errors.HasCode(err, errors.CodeUnauthorized) {
				log.Printf("[LoadUser] Failed to load session user: %v", err)
			}
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the logged in user, nil for anonymous requests
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireLogin redirects anonymous visitors to loginPath, passing the
// requested URL in next
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		SetFlash(c, FlashWarning, LoginRequiredMessage)
		c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}
