package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS answers every request with permissive cross-origin headers and
// short-circuits preflight. Registered globally so OPTIONS succeeds
// uniformly, including on the NoRoute chain; browser callers depend on
// this before any real method is attempted.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "OPTIONS,POST,GET,PUT,DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// BodyLimit caps the request body before any handler reads it. Images
// must be pre-compressed client-side below this threshold; oversized
// bodies fail the JSON bind with a 400.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
