package config

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vnkhanh/podcastr-backend/models"
)

var searchIndexes = map[string]string{
	"search_author": "author",
	"search_title":  "podcast_title",
	"search_body":   "podcast_description",
}

// Migrate tạo bảng và các chỉ mục full-text cho tìm kiếm podcast
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Podcast{}); err != nil {
		return errors.Wrap(err, "autoMigrate")
	}

	for name, column := range searchIndexes {
		stmt := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON podcasts USING GIN (to_tsvector('simple', %s))",
			name, column,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "create index %s", name)
		}
	}

	log.Info("database migrated")
	return nil
}
