package middleware

import "github.com/gin-gonic/gin"

// NoCache marks board responses as uncacheable; the state changes with
// every assignment and stale reads break the optimistic flow.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
