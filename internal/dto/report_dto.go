package dto

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/urlsentry/urlsentry-backend/internal/models"
)

var (
	ErrURLRequired   = errors.New("url is required")
	ErrInvalidURL    = errors.New("url must be a valid http(s) URI")
	ErrEmptyUpdate   = errors.New("at least one field must be provided")
	ErrInvalidStatus = errors.New("status must be one of: pending, rejected, approved")
)

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func validStatus(s string) bool {
	switch s {
	case models.StatusPending, models.StatusRejected, models.StatusApproved:
		return true
	}
	return false
}

type CreateReportRequest struct {
	URL         string `json:"url"`
	Cause       string `json:"cause"`
	Description string `json:"description"`
}

func (r *CreateReportRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrURLRequired
	}
	if err := validateURL(r.URL); err != nil {
		return err
	}
	if !models.ReportCauses[r.Cause] {
		return fmt.Errorf("invalid cause %q", r.Cause)
	}
	if len(r.Description) > 1000 {
		return errors.New("description must be under 1000 characters")
	}
	return nil
}

// UpdateReportRequest is the allow-listed admin update: only cause and status
// are writable, anything else in the body is ignored by the decoder.
type UpdateReportRequest struct {
	Cause  *string `json:"cause"`
	Status *string `json:"status"`
}

func (r *UpdateReportRequest) Validate() error {
	if r.Cause == nil && r.Status == nil {
		return ErrEmptyUpdate
	}
	if r.Cause != nil && !models.ReportCauses[*r.Cause] {
		return fmt.Errorf("invalid cause %q", *r.Cause)
	}
	if r.Status != nil && !validStatus(*r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ListReportsQuery carries the sparse filter plus paging options; unset
// filter fields are unconstrained.
type ListReportsQuery struct {
	URL    string `query:"url"`
	Cause  string `query:"cause"`
	Status string `query:"status"`
	SortBy string `query:"sortBy"`
	Limit  int    `query:"limit"`
	Page   int    `query:"page"`
}

type ApprovedURLsResponse struct {
	ApprovedURLs []string `json:"approvedUrls"`
}
