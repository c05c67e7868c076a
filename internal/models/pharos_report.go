package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PharosCauses are the accepted causes for the screenshot-based variant.
// The two multi-word values are wire-compatible with the original clients.
var PharosCauses = map[string]bool{
	"cyberbullying":  true,
	"misinformation": true,
	"hate speech":    true,
	"identity theft": true,
	"other":          true,
}

// PharosReport is one submission of flagged content: a URL, a screenshot, or
// both. Screenshots are stored base64-encoded with a SHA-256 fingerprint of
// the normalized image bytes for duplicate detection. Approval is manual only.
type PharosReport struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	URL           string    `gorm:"size:2048;index" json:"url,omitempty"`
	Cause         string    `gorm:"size:50;not null" json:"cause"`
	Description   string    `gorm:"size:1000" json:"description,omitempty"`
	Screenshot    string    `gorm:"type:text" json:"screenshot,omitempty"`
	ScreenshotSHA string    `gorm:"size:64;index" json:"-"`
	Status        string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *PharosReport) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
