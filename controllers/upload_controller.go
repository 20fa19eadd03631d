package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chirp-sns/api-go/cache"
	"github.com/chirp-sns/api-go/config"
	"github.com/chirp-sns/api-go/ratelimit"
	"github.com/chirp-sns/api-go/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxImageSize = 5 * 1024 * 1024 // 5MB

// ObjectStore writes an uploaded object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// R2Store stores objects in a Cloudflare R2 bucket through the
// S3-compatible API.
type R2Store struct {
	Client *s3.Client
	Config *config.R2Config
}

func NewR2Store() *R2Store {
	cfg := config.GetR2Config()
	return &R2Store{
		Client: config.NewR2Client(cfg),
		Config: cfg,
	}
}

func (s *R2Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Config.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.Config.PublicURL, key), nil
}

type UploadController struct {
	DB      *gorm.DB
	Limiter ratelimit.Limiter
	Store   ObjectStore
	Cache   *cache.PageCache
}

func NewUploadController(db *gorm.DB, limiter ratelimit.Limiter, store ObjectStore, pageCache *cache.PageCache) *UploadController {
	return &UploadController{DB: db, Limiter: limiter, Store: store, Cache: pageCache}
}

var allowedImageTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
}

// UploadImage godoc
// @Summary Upload a profile or cover image
// @Description Accepts JPEG/PNG/WebP up to 5MB. The declared content type and the actual file signature must agree; a renamed file is rejected.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param kind formData string true "profile or cover"
// @Success 200 {object} map[string]interface{}
// @Router /upload [post]
func (uc *UploadController) UploadImage(c *gin.Context) {
	actor, err := utils.ResolveActor(c, uc.DB)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := uc.Limiter.Allow(c.Request.Context(), actor.ExternalID, ratelimit.ActionUpload)
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("rate limiter unavailable", err))
		return
	}
	if !allowed {
		utils.RespondError(c, utils.RateLimited("Upload limit reached. Try again later."))
		return
	}

	kind := c.PostForm("kind")
	if kind != "profile" && kind != "cover" {
		utils.RespondError(c, utils.ValidationFailed("kind must be profile or cover"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.ValidationFailed("A file is required"))
		return
	}
	defer file.Close()

	if header.Size == 0 {
		utils.RespondError(c, utils.ValidationFailed("A file is required"))
		return
	}
	if header.Size > maxImageSize {
		utils.RespondError(c, utils.ValidationFailed("File size must be 5MB or less"))
		return
	}

	declared, ok := allowedImageTypes[header.Header.Get("Content-Type")]
	if !ok {
		utils.RespondError(c, utils.ValidationFailed("Only JPEG, PNG and WebP images are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to read upload", err))
		return
	}
	if len(data) > maxImageSize {
		utils.RespondError(c, utils.ValidationFailed("File size must be 5MB or less"))
		return
	}

	// The declared type is client-controlled; the magic bytes are not.
	// Both must name the same allowed format.
	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		utils.RespondError(c, utils.ValidationFailed("File content is not a supported image format"))
		return
	}
	if !detected.Is(declared) {
		utils.RespondError(c, utils.ValidationFailed("File content does not match its declared type"))
		return
	}

	key := fmt.Sprintf("users/%d/%s-%d-%s%s", actor.ID, kind, time.Now().Unix(), uuid.New().String(), detected.Extension())

	url, err := uc.Store.Put(c.Request.Context(), key, detected.String(), bytes.NewReader(data))
	if err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to store image", err))
		return
	}

	column := "profile_image_url"
	if kind == "cover" {
		column = "cover_image_url"
	}
	if err := uc.DB.Model(actor).Update(column, url).Error; err != nil {
		utils.RespondError(c, utils.StorageFailure("failed to save image URL", err))
		return
	}

	if uc.Cache != nil {
		_ = uc.Cache.Invalidate(c.Request.Context(), "/"+actor.Username)
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
