package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/models"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxPostLength = 280

type PostController struct {
	DB      *gorm.DB
	Limiter ratelimit.Limiter
	Cache   *cache.PageCache
}

type CreatePostRequest struct {
	Content  string  `json:"content"`
	ParentID *uint   `json:"parentId"`
	MediaURL *string `json:"mediaUrl"`
}

func NewPostController(db *gorm.DB, limiter ratelimit.Limiter, pageCache *cache.PageCache) *PostController {
	return &PostController{DB: db, Limiter: limiter, Cache: pageCache}
}

// postViewQuery selects posts joined with their author and the derived
// counts. Counts come from correlated subqueries so they are always a
// fresh recount.
func postViewQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select(`posts.id, posts.content, posts.media_url, posts.parent_id, posts.user_id, posts.created_at,
			users.username, users.display_name, users.profile_image_url,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM posts replies WHERE replies.parent_id = posts.id) AS replies_count`).
		Joins("JOIN users ON users.id = posts.user_id")
}

// markLiked sets the liked-by-viewer flag on each view in one query.
func markLiked(db *gorm.DB, viewerID uint, posts []PostView) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var likedIDs []uint
	if err := db.Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", viewerID, ids).
		Pluck("post_id", &likedIDs).Error; err != nil {
		return err
	}

	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for i := range posts {
		posts[i].IsLiked = liked[posts[i].ID]
	}
	return nil
}

// CreatePost godoc
// @Summary Create a new post or reply
// @Description Creates a post with trimmed content of at most 280 characters
// @Tags posts
// @Accept json
// @Produce json
// @Param post body CreatePostRequest true "Post creation request"
// @Success 201 {object} map[string]interface{}
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.ValidationFailed("Invalid request body"))
		return
	}

	actor, err := utils.ResolveActor(c, pc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := pc.Limiter.Allow(c.Request.Context(), actor.ExternalID, ratelimit.ActionPost)
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("rate limiter unavailable", err))
		return
	}
	if !allowed {
		utils.RespondError(c, utils.RateLimited("Post limit reached. Try again later."))
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.RespondError(c, utils.ValidationFailed("Post content is required"))
		return
	}
	if utf8.RuneCountInString(content) > maxPostLength {
		utils.RespondError(c, utils.ValidationFailed("Post content must be 280 characters or less"))
		return
	}

	if req.ParentID != nil {
		var parent models.Post
		if err := pc.DB.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, utils.NotFoundError("Parent post not found"))
				return
			}
			utils.RespondError(c, utils.StorageFailure("failed to load parent post", err))
			return
		}
	}

	post := models.Post{
		Content:     content,
		MediaURL:    req.MediaURL,
		ParentID:    req.ParentID,
		UserID:      actor.ID,
		IsPublished: true,
	}

	if err := pc.DB.Create(&post).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to create post", err))
		return
	}

	if pc.Cache != nil {
		_ = pc.Cache.Invalidate(c.Request.Context(), "/")
	}

	c.JSON(http.StatusCreated, gin.H{"postId": post.ID})
}

// DeletePost godoc
// @Summary Delete a post
// @Description Deletes a post owned by the caller; likes and direct replies cascade in the database
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id} [delete]
func (pc *PostController) DeletePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.ValidationFailed("Post ID is required"))
		return
	}

	actor, err := utils.ResolveActor(c, pc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var post models.Post
	if err := pc.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("Post not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load post", err))
		return
	}

	if post.UserID != actor.ID {
		utils.RespondError(c, utils.InvalidOperation("You cannot delete another user's post"))
		return
	}

	if err := pc.DB.Delete(&post).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to delete post", err))
		return
	}

	if pc.Cache != nil {
		_ = pc.Cache.Invalidate(c.Request.Context(), "/", "/"+actor.Username)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPostDetail godoc
// @Summary Get a post with its replies
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id} [get]
func (pc *PostController) GetPostDetail(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, utils.ValidationFailed("Post ID is required"))
		return
	}

	var viewerID uint
	if actor, err := utils.ResolveActor(c, pc.DB); err == nil {
		viewerID = actor.ID
	}

	var post PostView
	result := postViewQuery(pc.DB).Where("posts.id = ?", postID).First(&post)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("Post not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load post", result.Error))
		return
	}

	var replies []PostView
	if err := postViewQuery(pc.DB).
		Where("posts.parent_id = ? AND posts.is_published = ?", postID, true).
		Order("posts.created_at ASC").
		Find(&replies).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to load replies", err))
		return
	}

	single := []PostView{post}
	_ = markLiked(pc.DB, viewerID, single)
	_ = markLiked(pc.DB, viewerID, replies)
	post = single[0]

	c.JSON(http.StatusOK, gin.H{
		"post":    post,
		"replies": replies,
	})
}

// GetUserPosts godoc
// @Summary Get a user's posts
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20)"
// @Success 200 {object} map[string]interface{}
// @Router /users/{username}/posts [get]
func (pc *PostController) GetUserPosts(c *gin.Context) {
	username := c.Param("username")
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), 20)

	var user models.User
	if err := pc.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFoundError("User not found"))
			return
		}
		utils.RespondError(c, utils.StorageFailure("failed to load user", err))
		return
	}

	var viewerID uint
	if actor, err := utils.ResolveActor(c, pc.DB); err == nil {
		viewerID = actor.ID
	}

	var total int64
	pc.DB.Model(&models.Post{}).
		Where("user_id = ? AND parent_id IS NULL AND is_published = ?", user.ID, true).
		Count(&total)

	var posts []PostView
	if err := postViewQuery(pc.DB).
		Where("posts.user_id = ? AND posts.parent_id IS NULL AND posts.is_published = ?", user.ID, true).
		Order("posts.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to fetch posts", err))
		return
	}

	if err := markLiked(pc.DB, viewerID, posts); err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to resolve liked posts", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
