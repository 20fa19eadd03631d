package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/chirp-sns/api-go/models"
	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// identityEvent is the payload shape the identity provider delivers:
// user.created, user.updated and user.deleted events keyed by the
// provider's subject id.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string `json:"id"`
		Username              string `json:"username"`
		FirstName             string `json:"first_name"`
		LastName              string `json:"last_name"`
		ImageURL              string `json:"image_url"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
		EmailAddresses        []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

type WebhookController struct {
	DB *gorm.DB
	wh *svix.Webhook
}

func NewWebhookController(db *gorm.DB) *WebhookController {
	wc := &WebhookController{DB: db}
	if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
		wh, err := svix.NewWebhook(secret)
		if err != nil {
			zap.L().Warn("invalid webhook secret, signature verification disabled", zap.Error(err))
		} else {
			wc.wh = wh
		}
	}
	return wc
}

// HandleIdentityEvent godoc
// @Summary Identity provider webhook
// @Description Provisions, updates and deletes user records from signed identity-provider events
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /webhooks/identity [post]
func (wc *WebhookController) HandleIdentityEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	if wc.wh != nil {
		if err := wc.wh.Verify(payload, c.Request.Header); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
			return
		}
	}

	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := applyIdentityEvent(wc.DB, &evt); err != nil {
		zap.L().Error("failed to apply identity event", zap.String("type", evt.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func applyIdentityEvent(db *gorm.DB, evt *identityEvent) error {
	switch evt.Type {
	case "user.created":
		return provisionUser(db, evt)
	case "user.updated":
		return updateUserFromEvent(db, evt)
	case "user.deleted":
		if evt.Data.ID == "" {
			return errors.New("user.deleted event without id")
		}
		return db.Where("external_id = ?", evt.Data.ID).Delete(&models.User{}).Error
	default:
		// Unknown event types are acknowledged and dropped.
		return nil
	}
}

func primaryEmail(evt *identityEvent) string {
	for _, addr := range evt.Data.EmailAddresses {
		if addr.ID == evt.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(evt.Data.EmailAddresses) > 0 {
		return evt.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

func provisionUser(db *gorm.DB, evt *identityEvent) error {
	if evt.Data.ID == "" {
		return errors.New("user.created event without id")
	}

	// Events can be redelivered; an already-provisioned subject is fine.
	var existing models.User
	err := db.Where("external_id = ?", evt.Data.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	email := primaryEmail(evt)
	if email == "" {
		// Provider test events carry no address.
		email = fmt.Sprintf("%s@placeholder.invalid", evt.Data.ID)
	}

	username := evt.Data.Username
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	displayName := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName)
	if displayName == "" {
		displayName = username
	}

	user := models.User{
		ExternalID:      evt.Data.ID,
		Username:        username,
		DisplayName:     displayName,
		Email:           email,
		ProfileImageURL: evt.Data.ImageURL,
		Provider:        "webhook",
		EmailVerified:   true,
	}
	return db.Create(&user).Error
}

func updateUserFromEvent(db *gorm.DB, evt *identityEvent) error {
	if evt.Data.ID == "" {
		return errors.New("user.updated event without id")
	}

	var user models.User
	if err := db.Where("external_id = ?", evt.Data.ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Update for a subject we never saw: provision instead.
			return provisionUser(db, evt)
		}
		return err
	}

	updates := map[string]interface{}{}
	if evt.Data.Username != "" {
		updates["username"] = evt.Data.Username
	}
	if name := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName); name != "" {
		updates["display_name"] = name
	}
	if evt.Data.ImageURL != "" {
		updates["profile_image_url"] = evt.Data.ImageURL
	}
	if email := primaryEmail(evt); email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&user).Updates(updates).Error
}
