package middleware

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl sets Cache-Control on GET /api responses that did not set one.
// ttl <= 0 disables caching.
func CacheControl(enabled bool, ttl time.Duration) gin.HandlerFunc {
	value := "no-cache"
	if enabled && ttl > 0 {
		value = fmt.Sprintf("public, max-age=%d", int(ttl.Seconds()))
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && strings.HasPrefix(c.Request.URL.Path, "/api/") {
			if c.Writer.Header().Get("Cache-Control") == "" {
				c.Header("Cache-Control", value)
			}
		}
		c.Next()
	}
}

// ETag returns the weak validator of a response derived from a record set
// ID and a variant string, such as the query string.
func ETag(recordSetID, variant string) string {
	h := fnv.New32a()
	h.Write([]byte(variant))
	return fmt.Sprintf(`W/"%s-%x"`, recordSetID, h.Sum32())
}

// NotModified sets the ETag header and, when the client already holds that
// version, answers 304 and aborts. Callers should return when it is true.
func NotModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" {
		for _, candidate := range strings.Split(match, ",") {
			if strings.TrimSpace(candidate) == etag || strings.TrimSpace(candidate) == "*" {
				c.AbortWithStatus(http.StatusNotModified)
				return true
			}
		}
	}
	return false
}
