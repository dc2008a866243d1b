package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"club-dashboard-backend/internal/clubapi"
	"club-dashboard-backend/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestLogger attaches a request-scoped logger to the request context and
// logs every request once it is served.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		reqLog := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		ev := reqLog.Info()
		if status >= 500 {
			ev = reqLog.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.ClientIP()).
			Msg("HTTP request")
	}
}

// authToken forwards the caller's Authorization header to the club backend.
func authToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := strings.TrimSpace(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(clubapi.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}
