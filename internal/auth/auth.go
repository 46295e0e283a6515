// Package auth resolves the requesting user. Login itself happens in an
// authenticating proxy in front of the server, which passes the user id in
// a trusted header.
package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"venchmarks/internal/models"
)

const userKey = "venchmarks.user"

type Options struct {
	Header   string
	LoginURL string
	DevUser  string
}

// Middleware attaches the current user, if any, to the gin context.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := opts.DevUser
		if id == "" && opts.Header != "" {
			id = strings.TrimSpace(c.GetHeader(opts.Header))
		}
		if id != "" {
			c.Set(userKey, &models.User{ID: id})
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// RequireLogin redirects anonymous requests to the login page with a return
// URL.
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginURL(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

func LoginURL(loginURL, returnTo string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "rd=" + url.QueryEscape(returnTo)
}

// LogoutURL is the proxy's sign-out endpoint next to loginURL.
func LogoutURL(loginURL string) string {
	if i := strings.LastIndex(loginURL, "/"); i >= 0 {
		return loginURL[:i] + "/sign_out"
	}
	return "/sign_out"
}
