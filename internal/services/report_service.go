package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/cache"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/models"
	"github.com/urlsentry/urlsentry-backend/internal/notify"
	"github.com/urlsentry/urlsentry-backend/internal/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateReport = errors.New("you have already reported this URL")
	ErrReportNotFound  = errors.New("report not found")
)

// errSubmitRace: a concurrent first submission created the aggregate between
// our lookup and insert. The transaction is aborted at that point, so the
// losing submission is retried from scratch against the winner's row.
var errSubmitRace = errors.New("concurrent submission created this report")

// reportSortFields is the allow-list of sortable fields for the URL-report
// resource, mapping exposed names to columns.
var reportSortFields = map[string]string{
	"url":          "url",
	"cause":        "cause",
	"status":       "status",
	"reportsCount": "reports_count",
	"createdAt":    "created_at",
}

// ReportService is the aggregator for URL reports: duplicate prevention,
// count accumulation and threshold-based auto-approval.
type ReportService struct {
	db        *gorm.DB
	threshold int
	cache     *cache.ApprovedURLCache
	notifier  *notify.Notifier
}

func NewReportService(db *gorm.DB, threshold int, c *cache.ApprovedURLCache, n *notify.Notifier) *ReportService {
	return &ReportService{db: db, threshold: threshold, cache: c, notifier: n}
}

// SubmitReport records one user's report against a URL. The duplicate check,
// entry insert, count recompute and threshold evaluation run in a single
// transaction holding a row lock on the aggregate, so concurrent submissions
// for the same URL serialize instead of racing between check and write. The
// unique (report_id, user_id) index backstops the duplicate check.
func (s *ReportService) SubmitReport(ctx context.Context, userID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	report, approved, err := s.submitReport(ctx, userID, req)
	if errors.Is(err, errSubmitRace) {
		report, approved, err = s.submitReport(ctx, userID, req)
	}
	if err != nil {
		return nil, err
	}

	if approved {
		s.cache.Invalidate(ctx)
		s.notifier.URLAutoApproved(report.URL, report.ReportsCount)
	}
	return report, nil
}

func (s *ReportService) submitReport(ctx context.Context, userID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, bool, error) {
	var result models.Report
	approved := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		q := tx.Where("url = ?", req.URL)
		// SQLite serializes writers on its own; FOR UPDATE is Postgres-only.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		err := q.First(&report).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			report = models.Report{
				URL:    req.URL,
				Cause:  req.Cause,
				Status: models.StatusPending,
			}
			if err := tx.Create(&report).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errSubmitRace
				}
				return fmt.Errorf("failed to create report: %w", err)
			}
		case err != nil:
			return err
		default:
			var count int64
			if err := tx.Model(&models.ReportEntry{}).
				Where("report_id = ? AND user_id = ?", report.ID, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateReport
			}
		}

		entry := models.ReportEntry{
			ReportID:    report.ID,
			UserID:      userID,
			Cause:       req.Cause,
			Description: req.Description,
			ReportDate:  time.Now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReport
			}
			return fmt.Errorf("failed to create report entry: %w", err)
		}

		var reporters int64
		if err := tx.Model(&models.ReportEntry{}).
			Where("report_id = ?", report.ID).
			Distinct("user_id").
			Count(&reporters).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"reports_count": reporters}
		if reporters >= int64(s.threshold) && report.Status != models.StatusApproved {
			updates["status"] = models.StatusApproved
			approved = true
		}
		if err := tx.Model(&models.Report{}).Where("id = ?", report.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Preload("ReportedBy").First(&result, "id = ?", report.ID).Error
	})
	if err != nil {
		return nil, approved, err
	}
	return &result, approved, nil
}

// QueryReports returns a filtered, paginated page of report aggregates.
func (s *ReportService) QueryReports(ctx context.Context, query *dto.ListReportsQuery) (*pagination.Page[models.Report], error) {
	q := s.db.WithContext(ctx).Model(&models.Report{}).Preload("ReportedBy")
	if query.URL != "" {
		q = q.Where("url = ?", query.URL)
	}
	if query.Cause != "" {
		q = q.Where("cause = ?", query.Cause)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	return pagination.Paginate[models.Report](q, pagination.Options{
		SortBy: query.SortBy,
		Limit:  query.Limit,
		Page:   query.Page,
	}, reportSortFields)
}

// QueryOwnReports returns the aggregates the given user has reported.
func (s *ReportService) QueryOwnReports(ctx context.Context, userID uuid.UUID, query *dto.ListReportsQuery) (*pagination.Page[models.Report], error) {
	q := s.db.WithContext(ctx).Model(&models.Report{}).
		Preload("ReportedBy").
		Joins("JOIN report_entries ON report_entries.report_id = reports.id").
		Where("report_entries.user_id = ?", userID)
	if query.Status != "" {
		q = q.Where("reports.status = ?", query.Status)
	}

	return pagination.Paginate[models.Report](q, pagination.Options{
		SortBy: query.SortBy,
		Limit:  query.Limit,
		Page:   query.Page,
	}, reportSortFields)
}

func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Preload("ReportedBy").First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

// UpdateReport applies the allow-listed admin update (cause and/or status).
func (s *ReportService) UpdateReport(ctx context.Context, id uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	report, err := s.GetReport(ctx, id)
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

	if req.Status != nil {
		s.cache.Invalidate(ctx)
	}
	return s.GetReport(ctx, id)
}

func (s *ReportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	if report.Status == models.StatusApproved {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// ApprovedURLs returns the distinct URLs with approved status, served from
// cache when warm.
func (s *ReportService) ApprovedURLs(ctx context.Context) ([]string, error) {
	if urls, ok := s.cache.Get(ctx); ok {
		return urls, nil
	}

	var urls []string
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.StatusApproved).
		Distinct().
		Order("url").
		Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}

	s.cache.Set(ctx, urls)
	return urls, nil
}
