package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Blog is a published post. Everything except the row itself is immutable
// once inserted; delete is the only other mutation.
type Blog struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Title       string         `json:"title" db:"title" gorm:"type:text;not null"`
	Slug        string         `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_blogs_slug"`
	ContentMD   string         `json:"content_md" db:"content_md" gorm:"column:content_md;type:text;not null"`
	ContentHTML string         `json:"content_html" db:"content_html" gorm:"column:content_html;type:text;not null"`
	Tags        pq.StringArray `json:"tags" db:"tags" gorm:"type:text[];not null"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`
	Owner       Owner          `json:"user_id" db:"user_id" gorm:"column:user_id;type:uuid;index"`
}

func (Blog) TableName() string {
	return "blogs"
}
