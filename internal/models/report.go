package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses shared by both report variants.
const (
	StatusPending  = "pending"
	StatusRejected = "rejected"
	StatusApproved = "approved"
)

// ReportCauses are the accepted causes for URL reports.
var ReportCauses = map[string]bool{
	"harassment":      true,
	"terrorism":       true,
	"phishing":        true,
	"fraud":           true,
	"illegal_content": true,
	"other":           true,
}

// Report is the per-URL aggregate: one row per unique reported URL,
// accumulating reporter entries until the approval threshold is crossed.
type Report struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	URL          string        `gorm:"size:2048;not null;uniqueIndex" json:"url"`
	Cause        string        `gorm:"size:50;not null" json:"cause"`
	ReportsCount int           `gorm:"not null;default:0" json:"reportsCount"`
	Status       string        `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReportedBy   []ReportEntry `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"reportedBy"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReportEntry is one user's report against a URL. The composite unique index
// is the storage-level backstop for the one-report-per-user rule.
type ReportEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ReportID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_entries_report_user,priority:1" json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_entries_report_user,priority:2;index" json:"userId"`
	Cause       string    `gorm:"size:50;not null" json:"cause"`
	Description string    `gorm:"size:1000" json:"description,omitempty"`
	ReportDate  time.Time `gorm:"not null" json:"reportDate"`
}

func (e *ReportEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
