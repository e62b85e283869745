package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"evidence-backend/pkg/response"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
)

// NewCSRFToken mints a random token for the double-submit cookie
func NewCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SetCSRFCookie issues the csrf_token cookie. Unlike the auth cookies it is
// readable by scripts: the client must echo it back in the X-CSRF-Token
// header.
func SetCSRFCookie(c *gin.Context, token string) {
	secure := os.Getenv("GIN_MODE") == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(csrfCookieName, token, 3600*24, "/", "", secure, false)
}

// CSRFProtect enforces the double-submit cookie pattern on mutating methods
func CSRFProtect() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrfCookieName)
		header := c.GetHeader(csrfHeaderName)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "CSRF token missing or invalid"))
			return
		}

		c.Next()
	}
}
