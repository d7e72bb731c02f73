package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanEvent is an append-only record of one redirect through a Code.
// IP holds the anonymized address only.
type ScanEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CodeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_scan_events_code_id_timestamp,priority:1" json:"code_id"`
	Timestamp time.Time `gorm:"not null;index:idx_scan_events_code_id_timestamp,priority:2" json:"timestamp"`
	Referrer  *string   `gorm:"type:text" json:"referrer,omitempty"`
	UserAgent *string   `gorm:"type:text" json:"user_agent,omitempty"`
	IP        *string   `gorm:"size:64" json:"ip,omitempty"`

	// Code is declared for the foreign key only; events are read through the repository.
	Code *Code `gorm:"foreignKey:CodeID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for ScanEvent
func (ScanEvent) TableName() string { return "scan_events" }

// ReferrerCount is one row of a per-referrer aggregation
type ReferrerCount struct {
	Referrer *string `json:"referrer"`
	Count    int64   `json:"count"`
}
