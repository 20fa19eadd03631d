package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/models"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	DB      *gorm.DB
	Limiter ratelimit.Limiter
	Cache   *cache.PageCache
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// ProfileView is the public shape of a profile. Email, verification
// state and provider stay private to the account owner.
type ProfileView struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	Bio             string    `json:"bio"`
	ProfileImageURL string    `json:"profile_image_url"`
	CoverImageURL   string    `json:"cover_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewUserController(db *gorm.DB, limiter ratelimit.Limiter, pageCache *cache.PageCache) *UserController {
	return &UserController{DB: db, Limiter: limiter, Cache: pageCache}
}

// GetUserProfile godoc
// @Summary Get a user's public profile
// @Description Profile fields plus derived follower/following/post counts
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]interface{}
// @Router /users/{username} [get]
func (uc *UserController) GetUserProfile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := uc.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("User not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load user", err))
		return
	}

	var followersCount, followingCount, postsCount int64
	uc.DB.Model(&models.Follow{}).Where("following_id = ?", user.ID).Count(&followersCount)
	uc.DB.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&followingCount)
	uc.DB.Model(&models.Post{}).Where("user_id = ? AND parent_id IS NULL AND is_published = ?", user.ID, true).Count(&postsCount)

	isFollowing := false
	if actor, err := utils.ResolveActor(c, uc.DB); err == nil && actor.ID != user.ID {
		var n int64
		uc.DB.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", actor.ID, user.ID).
			Count(&n)
		isFollowing = n > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"user": ProfileView{
			ID:              user.ID,
			Username:        user.Username,
			DisplayName:     user.DisplayName,
			Bio:             user.Bio,
			ProfileImageURL: user.ProfileImageURL,
			CoverImageURL:   user.CoverImageURL,
			CreatedAt:       user.CreatedAt,
		},
		"followersCount": followersCount,
		"followingCount": followingCount,
		"postsCount":     postsCount,
		"isFollowing":    isFollowing,
	})
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Updates display name and bio; rate limited per actor
// @Tags users
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Profile update request"
// @Success 200 {object} map[string]interface{}
// @Router /profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.ValidationFailed("Invalid request body"))
		return
	}

	actor, err := utils.ResolveActor(c, uc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := uc.Limiter.Allow(c.Request.Context(), actor.ExternalID, ratelimit.ActionProfileUpdate)
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("rate limiter unavailable", err))
		return
	}
	if !allowed {
		utils.RespondError(c, utils.RateLimited("Profile update limit reached. Try again later."))
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		utils.RespondError(c, utils.ValidationFailed("Display name is required"))
		return
	}

	updates := map[string]interface{}{
		"display_name": displayName,
		"bio":          strings.TrimSpace(req.Bio),
	}
	if err := uc.DB.Model(actor).Updates(updates).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to update profile", err))
		return
	}

	if uc.Cache != nil {
		_ = uc.Cache.Invalidate(c.Request.Context(), "/"+actor.Username)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}
