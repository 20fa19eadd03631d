package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Content  string  `json:"content" gorm:"type:varchar(280);not null"`
	MediaURL *string `json:"media_url" gorm:"type:text"`

	// ParentID is set on replies. Deleting a post removes its direct
	// replies through the foreign key, not in handler code.
	ParentID *uint  `json:"parent_id" gorm:"index"`
	Parent   *Post  `json:"-" gorm:"foreignKey:ParentID"`
	Replies  []Post `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`

	UserID uint `json:"user_id" gorm:"not null;index"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	IsPublished bool `json:"is_published" gorm:"default:true"`

	Likes []Like `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
