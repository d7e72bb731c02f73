package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Code is a generated identifier resolving to a redirect/encode target.
// Slug is the public lookup key and never changes once assigned.
// TargetURL is derived from Type and Data at creation and stored as is.
// ScansCount is only ever changed by scan recording.
type Code struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Slug       string            `gorm:"size:64;not null;uniqueIndex:uk_codes_slug" json:"slug"`
	Title      string            `gorm:"size:200;not null;default:''" json:"title"`
	Type       CodeType          `gorm:"size:16;not null" json:"type"`
	TargetURL  string            `gorm:"type:text;not null" json:"target_url"`
	Data       datatypes.JSONMap `json:"data,omitempty"`
	Note       *string           `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index:idx_codes_created_at" json:"created_at"`
	ScansCount int64             `gorm:"not null;default:0" json:"scans_count"`
}

// TableName returns the table name for Code
func (Code) TableName() string { return "codes" }

// CodeFilter provides filter fields for repository queries
type CodeFilter struct {
	ID            *uuid.UUID
	Slug          *string
	Type          *CodeType
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
