package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/chirp-sns/api-go/utils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": utils.CodeUnauthenticated})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format", "code": utils.CodeUnauthenticated})
			c.Abort()
			return
		}

		token := bearerToken[1]
		claims := jwt.MapClaims{}
		parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": utils.CodeUnauthenticated})
			c.Abort()
			return
		}

		subject, ok := claims["sub"].(string)
		if !ok || subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims", "code": utils.CodeUnauthenticated})
			c.Abort()
			return
		}

		userClaims := &utils.UserClaims{Subject: subject}
		if id, ok := claims["user_id"].(float64); ok {
			userClaims.UserID = uint(id)
		}

		c.Set(string(utils.UserContextKey), userClaims)

		c.Next()
	}
}
