package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/models"
	"github.com/urlsentry/urlsentry-backend/internal/pagination"
	"github.com/urlsentry/urlsentry-backend/internal/screenshot"
	"gorm.io/gorm"
)

// ErrMissingTarget is returned when a pharos submission carries neither a URL
// nor a screenshot.
var ErrMissingTarget = errors.New("a url or a screenshot is required")

var pharosSortFields = map[string]string{
	"url":       "url",
	"cause":     "cause",
	"status":    "status",
	"createdAt": "created_at",
}

// PharosService handles the screenshot-capable report variant. One row per
// submission, no auto-approval: status changes are manual only.
type PharosService struct {
	db *gorm.DB
}

func NewPharosService(db *gorm.DB) *PharosService {
	return &PharosService{db: db}
}

// Submit creates a pharos report. Duplicate detection is scoped to the
// submitting user and keyed on every identity supplied: the same URL or the
// same screenshot fingerprint counts as a duplicate. A URL-only report and a
// screenshot-only report identify different targets and may coexist.
func (s *PharosService) Submit(ctx context.Context, userID uuid.UUID, req *dto.CreatePharosReportRequest, shot *screenshot.Processed) (*models.PharosReport, error) {
	if req.URL == "" && shot == nil {
		return nil, ErrMissingTarget
	}

	var report models.PharosReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.URL != "" {
			var count int64
			if err := tx.Model(&models.PharosReport{}).
				Where("user_id = ? AND url = ?", userID, req.URL).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateReport
			}
		}
		if shot != nil {
			var count int64
			if err := tx.Model(&models.PharosReport{}).
				Where("user_id = ? AND screenshot_sha = ?", userID, shot.SHA256).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateReport
			}
		}

		report = models.PharosReport{
			UserID:      userID,
			URL:         req.URL,
			Cause:       req.Cause,
			Description: req.Description,
			Status:      models.StatusPending,
		}
		if shot != nil {
			report.Screenshot = shot.Base64
			report.ScreenshotSHA = shot.SHA256
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *PharosService) Query(ctx context.Context, query *dto.ListReportsQuery) (*pagination.Page[models.PharosReport], error) {
	q := s.db.WithContext(ctx).Model(&models.PharosReport{})
	if query.URL != "" {
		q = q.Where("url = ?", query.URL)
	}
	if query.Cause != "" {
		q = q.Where("cause = ?", query.Cause)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	return pagination.Paginate[models.PharosReport](q, pagination.Options{
		SortBy: query.SortBy,
		Limit:  query.Limit,
		Page:   query.Page,
	}, pharosSortFields)
}

func (s *PharosService) Get(ctx context.Context, id uuid.UUID) (*models.PharosReport, error) {
	var report models.PharosReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// Update applies the allow-listed admin update (cause and/or status).
func (s *PharosService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePharosReportRequest) (*models.PharosReport, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Cause != nil {
		updates["cause"] = *req.Cause
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if err := s.db.WithContext(ctx).Model(report).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PharosService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.PharosReport{}, "id = ?", id).Error
}
