package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLoggedBody = 4096

var skipLogPaths = map[string]bool{
	"/health": true,
}

// LogRequest logs every request with its body, status and latency. Meant for
// non production stages only.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipLogPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		body, err := readBody(c)
		if err != nil {
			LogWithCorrelationID(c.Request.Context()).Error("Failed to read request body",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		LogWithCorrelationID(c.Request.Context()).Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("body", body),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// readBody reads the request body and puts it back for the handler
func readBody(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	if len(raw) > maxLoggedBody {
		return string(raw[:maxLoggedBody]) + "...", nil
	}
	return string(raw), nil
}
