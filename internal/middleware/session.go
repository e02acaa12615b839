package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName holds the anonymous session key that owns a cart
	SessionCookieName = "session_key"
	sessionKeyContext = "sessionKey"
	sessionMaxAge     = 60 * 60 * 24 * 30
)

// Session makes sure every request carries a session key, issuing a new cookie when
// the client has none or sent one that is not a UUID.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookieName)
		if err != nil || !validSessionKey(key) {
			key = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, key, sessionMaxAge, "/", "", secure, true)
			log.WithField("path", c.Request.URL.Path).Debug("Issued new session key")
		}
		c.Set(sessionKeyContext, key)
		c.Next()
	}
}

// SessionKey returns the session key stored by Session
func SessionKey(c *gin.Context) string {
	return c.GetString(sessionKeyContext)
}

func validSessionKey(key string) bool {
	_, err := uuid.Parse(key)
	return err == nil
}
