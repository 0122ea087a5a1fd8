// cors.go - CORS-Header fuer alle Antworten
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS setzt Origin, Methods und Headers auf "*" und beantwortet Preflight
// (OPTIONS) Requests mit einem leeren 200.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
