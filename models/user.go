package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"size:150;not null" json:"name"`
	Email    string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:text" json:"-"`
	// ExternalID là id công khai của tác giả, được copy vào podcast.author_id
	ExternalID string    `gorm:"size:150;uniqueIndex;not null" json:"external_id"`
	ImageURL   string    `gorm:"type:text" json:"image_url"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
