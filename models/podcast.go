package models

import (
	"time"

	"github.com/google/uuid"
)

type Podcast struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PodcastTitle       string    `gorm:"size:255;not null" json:"podcast_title"`
	PodcastDescription string    `gorm:"type:text;not null" json:"podcast_description"`
	VoiceType          VoiceType `gorm:"type:varchar(20);not null;index" json:"voice_type"`
	VoicePrompt        string    `gorm:"type:text" json:"voice_prompt"`
	AudioURL           string    `gorm:"type:text" json:"audio_url"`
	AudioStorageID     string    `gorm:"type:text" json:"audio_storage_id"`
	ImagePrompt        *string   `gorm:"type:text" json:"image_prompt,omitempty"`
	ImageURL           string    `gorm:"type:text" json:"image_url"`
	ImageStorageID     string    `gorm:"type:text" json:"image_storage_id"`
	Views              int       `gorm:"not null;default:0;check:chk_podcasts_views,views >= 0" json:"views"`
	AudioDuration      float64   `gorm:"not null;default:0" json:"audio_duration"`

	// Chủ sở hữu, gán lúc tạo và không đổi
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	User   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	// Snapshot of the owner's profile at creation time, never re-synced.
	Author         string `gorm:"size:150;not null" json:"author"`
	AuthorID       string `gorm:"size:150;not null;index" json:"author_id"`
	AuthorImageURL string `gorm:"type:text" json:"author_image_url"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
