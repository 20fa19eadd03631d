package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/models"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InteractionController struct {
	DB      *gorm.DB
	Limiter ratelimit.Limiter
	Cache   *cache.PageCache
}

func NewInteractionController(db *gorm.DB, limiter ratelimit.Limiter, pageCache *cache.PageCache) *InteractionController {
	return &InteractionController{DB: db, Limiter: limiter, Cache: pageCache}
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Description Flips the like row for (actor, post) and returns the new state with an exact recount
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/like [post]
func (ic *InteractionController) ToggleLike(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.ValidationFailed("Post ID is required"))
		return
	}

	actor, err := utils.ResolveActor(c, ic.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := ic.Limiter.Allow(c.Request.Context(), actor.ExternalID, ratelimit.ActionLike)
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("rate limiter unavailable", err))
		return
	}
	if !allowed {
		utils.RespondError(c, utils.RateLimited("Like limit reached. Try again later."))
		return
	}

	var post models.Post
	if err := ic.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("Post not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load post", err))
		return
	}

	isLiked, err := ic.toggleLikeRow(actor.ID, post.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Exact recount: never increment a possibly stale value.
	var likesCount int64
	if err := ic.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likesCount).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to count likes", err))
		return
	}

	ic.invalidatePages(c, "/")

	c.JSON(http.StatusOK, gin.H{
		"isLiked":    isLiked,
		"likesCount": likesCount,
	})
}

// toggleLikeRow flips the (user, post) like row. The unique index on
// the pair is the only serialization point: a racing duplicate insert
// collapses to "already liked", a racing delete to "already unliked".
func (ic *InteractionController) toggleLikeRow(userID, postID uint) (bool, error) {
	var existing models.Like
	err := ic.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}
		if err := ic.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return false, utils.StorageFailure("failed to like post", err)
		}
		return true, nil
	case err != nil:
		return false, utils.StorageFailure("failed to check like", err)
	default:
		if err := ic.DB.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error; err != nil {
			return false, utils.StorageFailure("failed to unlike post", err)
		}
		return false, nil
	}
}

// ToggleFollow godoc
// @Summary Follow or unfollow a user
// @Description Flips the follow row for (actor, target) and returns the new state with an exact recount
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path string true "User ID to follow"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/follow [post]
func (ic *InteractionController) ToggleFollow(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.ValidationFailed("User ID is required"))
		return
	}

	actor, err := utils.ResolveActor(c, ic.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := ic.Limiter.Allow(c.Request.Context(), actor.ExternalID, ratelimit.ActionFollow)
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("rate limiter unavailable", err))
		return
	}
	if !allowed {
		utils.RespondError(c, utils.RateLimited("Follow limit reached. Try again later."))
		return
	}

	if actor.ID == uint(targetID) {
		utils.RespondError(c, utils.InvalidOperation("self-follow not allowed"))
		return
	}

	var target models.User
	if err := ic.DB.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("User not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load user", err))
		return
	}

	isFollowing, err := ic.toggleFollowRow(actor.ID, target.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var followersCount int64
	if err := ic.DB.Model(&models.Follow{}).Where("following_id = ?", target.ID).Count(&followersCount).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to count followers", err))
		return
	}

	ic.invalidatePages(c, "/"+target.Username)

	c.JSON(http.StatusOK, gin.H{
		"isFollowing":    isFollowing,
		"followersCount": followersCount,
	})
}

func (ic *InteractionController) toggleFollowRow(followerID, followingID uint) (bool, error) {
	var existing models.Follow
	err := ic.DB.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		follow := models.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now()}
		if err := ic.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
			return false, utils.StorageFailure("failed to follow user", err)
		}
		return true, nil
	case err != nil:
		return false, utils.StorageFailure("failed to check follow", err)
	default:
		if err := ic.DB.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{}).Error; err != nil {
			return false, utils.StorageFailure("failed to unfollow user", err)
		}
		return false, nil
	}
}

func (ic *InteractionController) invalidatePages(c *gin.Context, paths ...string) {
	if ic.Cache == nil {
		return
	}
	// A stale page for one TTL is tolerable; a failed toggle is not.
	_ = ic.Cache.Invalidate(c.Request.Context(), paths...)
}

// GetUserFollowers godoc
// @Summary Get user's followers
// @Description Returns paginated list of user's followers
// @Tags interactions
// @Produce json
// @Param id path string true "User ID"
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20)"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/followers [get]
func (ic *InteractionController) GetUserFollowers(c *gin.Context) {
	userID := c.Param("id")
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 20)
	offset := (page - 1) * pageSize

	var followers []struct {
		UserID    uint      `json:"userId"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"followedAt"`
	}

	var total int64
	ic.DB.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&total)

	result := ic.DB.Model(&models.Follow{}).
		Select("users.id as user_id, users.username, follows.created_at").
		Joins("JOIN users ON users.id = follows.follower_id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&followers)

	if result.Error != nil {
		utils.RespondError(c, utils.StorageFailure("failed to fetch followers", result.Error))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"followers":  followers,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetUserFollowing godoc
// @Summary Get users that a user is following
// @Description Returns paginated list of users that the specified user is following
// @Tags interactions
// @Produce json
// @Param id path string true "User ID"
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20)"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/following [get]
func (ic *InteractionController) GetUserFollowing(c *gin.Context) {
	userID := c.Param("id")
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 20)
	offset := (page - 1) * pageSize

	var following []struct {
		UserID    uint      `json:"userId"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"followedAt"`
	}

	var total int64
	ic.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&total)

	result := ic.DB.Model(&models.Follow{}).
		Select("users.id as user_id, users.username, follows.created_at").
		Joins("JOIN users ON users.id = follows.following_id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&following)

	if result.Error != nil {
		utils.RespondError(c, utils.StorageFailure("failed to fetch following", result.Error))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following":  following,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

func parsePositiveInt(s string, fallback int) int {
	val, err := strconv.Atoi(s)
	if err != nil || val < 1 {
		return fallback
	}
	return val
}

func paginationMeta(page, pageSize int, total int64) *PaginationMeta {
	return &PaginationMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
