package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course is created on first ingestion of any of its lessons. Title is
// the natural dedup key: ingestion upserts by title and never mutates a
// course afterwards.
type Course struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null;uniqueIndex" json:"title"`
	URL   string    `gorm:"column:url" json:"url"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Course) TableName() string { return "course" }
