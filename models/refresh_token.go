package models

import (
	"time"

	"gorm.io/gorm"
)

type RefreshToken struct {
	gorm.Model
	UserID         uint      `json:"userId" gorm:"not null"`
	User           User      `json:"user" gorm:"foreignKey:UserID"`
	Token          string    `json:"token" gorm:"uniqueIndex;not null"`
	ExpirationDate time.Time `json:"expiry" gorm:"not null"`
	Revoked        bool      `json:"revoked" gorm:"default:false"`
}
