package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "apiKey"

// APIKeyRequired пропускает только запросы с заголовком APIKeyHeader, равным apiKey.
func APIKeyRequired(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(APIKeyHeader))
		if len(got) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"code":    "TA",
				"message": "Unauthorized.",
			})
			return
		}
		c.Next()
	}
}
