package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChunkWindowSize is the fixed character window used when slicing
// lesson text into chunks.
const ChunkWindowSize = 1600

// ChunkSource records provenance. Only two values ever occur, so it is
// a closed enum rather than a free-form metadata key.
type ChunkSource string

const (
	SourceHTML       ChunkSource = "html"
	SourceTranscript ChunkSource = "transcript"
)

func (s ChunkSource) Valid() bool {
	return s == SourceHTML || s == SourceTranscript
}

// Chunk is a bounded text fragment of a lesson plus its embedding.
// The primary key is a bigserial: chunk ids ascend in insertion order,
// which gives vector ranking a deterministic tie-break, and keeps the
// inline citation marker ("[chunk N]") compact for the generation
// service and any downstream parser.
type Chunk struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson   *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`

	Content   string      `gorm:"column:content;type:text;not null" json:"content"`
	Embedding Vector      `gorm:"column:embedding" json:"embedding"`
	Source    ChunkSource `gorm:"column:source;not null;index" json:"source"`

	// Extras that do not warrant their own column.
	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Chunk) TableName() string { return "chunk" }
