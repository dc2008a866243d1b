package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"club-dashboard-backend/internal/config"
	"club-dashboard-backend/internal/session"
)

const sessionIDKey = "session_id"

// sessionCookie makes sure every browser carries a session id. The cookie is
// SameSite=Lax so it survives the top-level redirect back from the gateway.
func sessionCookie(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, id, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// sessionFor binds the store to the caller's session.
func (s *server) sessionFor(c *gin.Context) (*session.Scoped, error) {
	return session.Scope(s.sessions, c.GetString(sessionIDKey))
}
