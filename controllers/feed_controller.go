package controllers

import (
	"net/http"

	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/models"
	"github.com/chirp-sns/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FeedController struct {
	DB    *gorm.DB
	Cache *cache.PageCache
}

func NewFeedController(db *gorm.DB, pageCache *cache.PageCache) *FeedController {
	return &FeedController{DB: db, Cache: pageCache}
}

func (fc *FeedController) feedQuery() *gorm.DB {
	return postViewQuery(fc.DB).
		Where("posts.parent_id IS NULL AND posts.is_published = ?", true)
}

// GetHomeFeed godoc
// @Summary Home timeline
// @Description Published top-level posts by the caller and the users they follow, newest first
// @Tags feed
// @Produce json
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20)"
// @Success 200 {object} map[string]interface{}
// @Router /feed [get]
func (fc *FeedController) GetHomeFeed(c *gin.Context) {
	actor, err := utils.ResolveActor(c, fc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 20)

	authorFilter := fc.DB.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", actor.ID)

	var posts []PostView
	if err := fc.feedQuery().
		Where("posts.user_id = ? OR posts.user_id IN (?)", actor.ID, authorFilter).
		Order("posts.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to fetch feed", err))
		return
	}

	if err := markLiked(fc.DB, actor.ID, posts); err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to resolve liked posts", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"page":  page,
	})
}

// GetPublicTimeline godoc
// @Summary Public timeline
// @Description All published top-level posts, newest first. The first page is served from the page cache and invalidated by post and like mutations.
// @Tags feed
// @Produce json
// @Param page query integer false "Page number (default: 1)"
// @Success 200 {object} map[string]interface{}
// @Router /timeline [get]
func (fc *FeedController) GetPublicTimeline(c *gin.Context) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 20)

	// Only the landing page is cached; deeper pages are cheap enough to
	// always hit the database.
	cacheable := fc.Cache != nil && page == 1 && pageSize == 20

	if cacheable {
		var cached []PostView
		if hit, err := fc.Cache.Get(c.Request.Context(), "/", &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"posts": cached, "page": page, "cached": true})
			return
		}
	}

	var posts []PostView
	if err := fc.feedQuery().
		Order("posts.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to fetch timeline", err))
		return
	}

	if cacheable {
		_ = fc.Cache.Set(c.Request.Context(), "/", posts)
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "page": page})
}
