package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// ExternalID is the identity-provider subject for this account. It is
	// the value carried in the JWT "sub" claim and the key used by the
	// identity webhook to provision, update and delete users.
	ExternalID string `gorm:"uniqueIndex;not null" json:"-"`

	Username    string `gorm:"unique;not null" json:"username"`
	DisplayName string `json:"display_name"`

	// Email never serializes with the model; only the owner's own
	// profile endpoint returns it, explicitly.
	Email    string  `gorm:"unique;not null" json:"-"`
	Password *string `gorm:"type:varchar(100)" json:"-"` // nil for webhook/oauth provisioned accounts

	Bio string `gorm:"type:text" json:"bio"`

	ProfileImageURL string `json:"profile_image_url"`
	CoverImageURL   string `json:"cover_image_url"`

	Provider      string `gorm:"default:'email'" json:"-"` // email, google, webhook
	EmailVerified bool   `json:"-"`

	Posts         []Post         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Likes         []Like         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
