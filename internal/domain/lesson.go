package domain

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`

	Title string `gorm:"column:title;not null" json:"title"`
	URL   string `gorm:"column:url" json:"url"`

	// Object storage keys for the raw artifacts; TranscriptKey is
	// attached after transcription completes.
	HTMLKey       string `gorm:"column:html_key" json:"html_key,omitempty"`
	VideoURL      string `gorm:"column:video_url" json:"video_url,omitempty"`
	TranscriptKey string `gorm:"column:transcript_key" json:"transcript_key,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
