package dto

import (
	"fmt"

	"github.com/urlsentry/urlsentry-backend/internal/models"
)

// CreatePharosReportRequest holds the text fields of the multipart
// submission; the image file is handled separately by the upload pipeline.
type CreatePharosReportRequest struct {
	URL         string `form:"url"`
	Cause       string `form:"cause"`
	Description string `form:"description"`
}

func (r *CreatePharosReportRequest) Validate() error {
	if r.URL != "" {
		if err := validateURL(r.URL); err != nil {
			return err
		}
	}
	if !models.PharosCauses[r.Cause] {
		return fmt.Errorf("invalid cause %q", r.Cause)
	}
	if len(r.Description) > 1000 {
		return fmt.Errorf("description must be under 1000 characters")
	}
	return nil
}

type UpdatePharosReportRequest struct {
	Cause  *string `json:"cause"`
	Status *string `json:"status"`
}

func (r *UpdatePharosReportRequest) Validate() error {
	if r.Cause == nil && r.Status == nil {
		return ErrEmptyUpdate
	}
	if r.Cause != nil && !models.PharosCauses[*r.Cause] {
		return fmt.Errorf("invalid cause %q", *r.Cause)
	}
	if r.Status != nil && !validStatus(*r.Status) {
		return ErrInvalidStatus
	}
	return nil
}
