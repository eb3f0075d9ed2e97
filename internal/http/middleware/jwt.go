package middleware

import (
	"net/http"
	"strings"

	"github.com/yalcindeniztr/tarihseli/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT проверяет Bearer-токен и кладёт user_id в контекст запроса
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			// запасной вариант для клиентов без заголовков (ws, EventSource)
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
