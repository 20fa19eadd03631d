package utils

import (
	"errors"

	"github.com/chirp-sns/api-go/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserClaims struct {
	Subject string `json:"sub"`
	UserID  uint   `json:"user_id"`
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// ResolveActor maps the authenticated identity on the request to its
// internal user record. The token subject is the external identity id,
// so a valid token for a deleted or never-provisioned account still
// resolves to nothing and the request is treated as unauthenticated.
func ResolveActor(c *gin.Context, db *gorm.DB) (*models.User, error) {
	claims := GetUser(c)
	if claims == nil {
		return nil, Unauthenticated("Authentication required")
	}

	var user models.User
	if err := db.Where("external_id = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthenticated("User not found")
		}
		return nil, StorageFailure("failed to resolve user", err)
	}
	return &user, nil
}
