package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/models"
	"github.com/urlsentry/urlsentry-backend/internal/pagination"
	"gorm.io/gorm"
)

func submitRequest(url string) *dto.CreateReportRequest {
	return &dto.CreateReportRequest{
		URL:         url,
		Cause:       "phishing",
		Description: "Fake login page",
	}
}

func TestSubmitReportCreatesAggregate(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()

	report, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://evil.test/login"))
	if err != nil {
		t.Fatalf("SubmitReport() error = %v", err)
	}

	if report.URL != "https://evil.test/login" {
		t.Errorf("URL = %q, want %q", report.URL, "https://evil.test/login")
	}
	if report.ReportsCount != 1 {
		t.Errorf("ReportsCount = %d, want 1", report.ReportsCount)
	}
	if report.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", report.Status, models.StatusPending)
	}
	if len(report.ReportedBy) != 1 {
		t.Errorf("len(ReportedBy) = %d, want 1", len(report.ReportedBy))
	}
}

func TestSubmitReportDuplicate(t *testing.T) {
	svc, db := newTestReportService(t, 5)
	ctx := context.Background()
	userID := testUserID(t)

	if _, err := svc.SubmitReport(ctx, userID, submitRequest("https://evil.test/")); err != nil {
		t.Fatalf("first SubmitReport() error = %v", err)
	}

	_, err := svc.SubmitReport(ctx, userID, submitRequest("https://evil.test/"))
	if !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("second SubmitReport() error = %v, want ErrDuplicateReport", err)
	}

	// No state change from the rejected submission.
	var report models.Report
	if err := db.First(&report, "url = ?", "https://evil.test/").Error; err != nil {
		t.Fatalf("failed to load report: %v", err)
	}
	if report.ReportsCount != 1 {
		t.Errorf("ReportsCount = %d after duplicate, want 1", report.ReportsCount)
	}
	var entries int64
	db.Model(&models.ReportEntry{}).Where("report_id = ?", report.ID).Count(&entries)
	if entries != 1 {
		t.Errorf("entry count = %d after duplicate, want 1", entries)
	}
}

func TestSubmitReportLosesInsertRace(t *testing.T) {
	svc, db := newTestReportService(t, 5)
	ctx := context.Background()

	// Sneak a competing aggregate for the same URL in between the lookup and
	// the insert, so the submission hits the unique url index the way a
	// concurrent first submission would.
	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("test:competing_insert", func(d *gorm.DB) {
		if raced || d.Statement.Schema == nil || d.Statement.Schema.Table != "reports" {
			return
		}
		raced = true
		if err := d.Session(&gorm.Session{NewDB: true}).Create(&models.Report{
			URL:    "https://contested.test/",
			Cause:  "phishing",
			Status: models.StatusPending,
		}).Error; err != nil {
			t.Errorf("competing insert failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	report, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://contested.test/"))
	if err != nil {
		t.Fatalf("SubmitReport() after losing insert race error = %v", err)
	}
	if !raced {
		t.Fatal("competing insert never fired")
	}
	if report.ReportsCount != 1 {
		t.Errorf("ReportsCount = %d, want 1", report.ReportsCount)
	}
	if len(report.ReportedBy) != 1 {
		t.Errorf("len(ReportedBy) = %d, want 1", len(report.ReportedBy))
	}

	// The losing submission lands on a single aggregate row.
	var aggregates int64
	db.Model(&models.Report{}).Where("url = ?", "https://contested.test/").Count(&aggregates)
	if aggregates != 1 {
		t.Errorf("aggregate rows = %d, want 1", aggregates)
	}
}

func TestSubmitReportSameUserDifferentURLs(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()
	userID := testUserID(t)

	if _, err := svc.SubmitReport(ctx, userID, submitRequest("https://a.test/")); err != nil {
		t.Fatalf("SubmitReport(a) error = %v", err)
	}
	if _, err := svc.SubmitReport(ctx, userID, submitRequest("https://b.test/")); err != nil {
		t.Errorf("SubmitReport(b) error = %v, want nil", err)
	}
}

func TestSubmitReportThreshold(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()
	url := "https://malware.test/payload"

	var last *models.Report
	for i := 0; i < 4; i++ {
		var err error
		last, err = svc.SubmitReport(ctx, testUserID(t), submitRequest(url))
		if err != nil {
			t.Fatalf("SubmitReport() #%d error = %v", i+1, err)
		}
	}
	if last.Status != models.StatusPending {
		t.Fatalf("status after 4 distinct reports = %q, want pending", last.Status)
	}

	last, err := svc.SubmitReport(ctx, testUserID(t), submitRequest(url))
	if err != nil {
		t.Fatalf("SubmitReport() #5 error = %v", err)
	}
	if last.Status != models.StatusApproved {
		t.Errorf("status after 5 distinct reports = %q, want approved", last.Status)
	}
	if last.ReportsCount != 5 {
		t.Errorf("ReportsCount = %d, want 5", last.ReportsCount)
	}

	// Approval is sticky; further reports keep accumulating.
	last, err = svc.SubmitReport(ctx, testUserID(t), submitRequest(url))
	if err != nil {
		t.Fatalf("SubmitReport() #6 error = %v", err)
	}
	if last.Status != models.StatusApproved {
		t.Errorf("status after 6th report = %q, want approved", last.Status)
	}
	if last.ReportsCount != 6 {
		t.Errorf("ReportsCount = %d, want 6", last.ReportsCount)
	}
}

func TestSubmitReportConfigurableThreshold(t *testing.T) {
	svc, _ := newTestReportService(t, 2)
	ctx := context.Background()

	if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://c.test/")); err != nil {
		t.Fatalf("SubmitReport() error = %v", err)
	}
	report, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://c.test/"))
	if err != nil {
		t.Fatalf("SubmitReport() error = %v", err)
	}
	if report.Status != models.StatusApproved {
		t.Errorf("status with threshold 2 = %q, want approved", report.Status)
	}
}

func TestQueryReportsPagination(t *testing.T) {
	svc, db := newTestReportService(t, 5)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		report := models.Report{
			URL:          fmt.Sprintf("https://site-%02d.test/", i),
			Cause:        "fraud",
			ReportsCount: 1,
			Status:       models.StatusPending,
		}
		if err := db.Create(&report).Error; err != nil {
			t.Fatalf("failed to seed report %d: %v", i, err)
		}
	}

	tests := []struct {
		name        string
		page        int
		wantResults int
	}{
		{name: "first page full", page: 1, wantResults: 10},
		{name: "middle page full", page: 2, wantResults: 10},
		{name: "last page partial", page: 3, wantResults: 5},
		{name: "past the end", page: 4, wantResults: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.QueryReports(ctx, &dto.ListReportsQuery{Limit: 10, Page: tt.page})
			if err != nil {
				t.Fatalf("QueryReports() error = %v", err)
			}
			if len(page.Results) != tt.wantResults {
				t.Errorf("len(Results) = %d, want %d", len(page.Results), tt.wantResults)
			}
			if page.TotalPages != 3 {
				t.Errorf("TotalPages = %d, want 3", page.TotalPages)
			}
			if page.TotalResults != 25 {
				t.Errorf("TotalResults = %d, want 25", page.TotalResults)
			}
			if page.Limit != 10 {
				t.Errorf("Limit = %d, want 10", page.Limit)
			}
		})
	}
}

func TestQueryReportsDefaults(t *testing.T) {
	svc, _ := newTestReportService(t, 5)

	page, err := svc.QueryReports(context.Background(), &dto.ListReportsQuery{})
	if err != nil {
		t.Fatalf("QueryReports() error = %v", err)
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Errorf("defaults = page %d limit %d, want page 1 limit 10", page.Page, page.Limit)
	}
}

func TestQueryReportsFilter(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()

	if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://x.test/")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitReport(ctx, testUserID(t), &dto.CreateReportRequest{URL: "https://y.test/", Cause: "harassment"}); err != nil {
		t.Fatal(err)
	}

	page, err := svc.QueryReports(ctx, &dto.ListReportsQuery{Cause: "harassment"})
	if err != nil {
		t.Fatalf("QueryReports() error = %v", err)
	}
	if page.TotalResults != 1 {
		t.Fatalf("TotalResults = %d, want 1", page.TotalResults)
	}
	if page.Results[0].URL != "https://y.test/" {
		t.Errorf("filtered URL = %q, want https://y.test/", page.Results[0].URL)
	}
}

func TestQueryReportsRejectsBadOptions(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()

	tests := []struct {
		name  string
		query dto.ListReportsQuery
	}{
		{name: "negative page", query: dto.ListReportsQuery{Page: -1}},
		{name: "negative limit", query: dto.ListReportsQuery{Limit: -3}},
		{name: "unknown sort field", query: dto.ListReportsQuery{SortBy: "secretColumn:asc"}},
		{name: "bad sort direction", query: dto.ListReportsQuery{SortBy: "url:sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.QueryReports(ctx, &tt.query)
			var ve pagination.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("QueryReports() error = %v, want pagination.ValidationError", err)
			}
		})
	}
}

func TestQueryReportsSorted(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()

	for _, url := range []string{"https://b.test/", "https://a.test/", "https://c.test/"} {
		if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest(url)); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.QueryReports(ctx, &dto.ListReportsQuery{SortBy: "url:asc"})
	if err != nil {
		t.Fatalf("QueryReports() error = %v", err)
	}
	want := []string{"https://a.test/", "https://b.test/", "https://c.test/"}
	for i, r := range page.Results {
		if r.URL != want[i] {
			t.Errorf("Results[%d].URL = %q, want %q", i, r.URL, want[i])
		}
	}
}

func TestQueryOwnReports(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()
	userID := testUserID(t)

	if _, err := svc.SubmitReport(ctx, userID, submitRequest("https://mine.test/")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://theirs.test/")); err != nil {
		t.Fatal(err)
	}

	page, err := svc.QueryOwnReports(ctx, userID, &dto.ListReportsQuery{})
	if err != nil {
		t.Fatalf("QueryOwnReports() error = %v", err)
	}
	if page.TotalResults != 1 {
		t.Fatalf("TotalResults = %d, want 1", page.TotalResults)
	}
	if page.Results[0].URL != "https://mine.test/" {
		t.Errorf("own report URL = %q, want https://mine.test/", page.Results[0].URL)
	}
}

func TestGetReportNotFound(t *testing.T) {
	svc, _ := newTestReportService(t, 5)

	_, err := svc.GetReport(context.Background(), uuid.New())
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("GetReport() error = %v, want ErrReportNotFound", err)
	}
}

func TestUpdateReport(t *testing.T) {
	svc, _ := newTestReportService(t, 5)
	ctx := context.Background()

	created, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://u.test/"))
	if err != nil {
		t.Fatal(err)
	}

	cause := "fraud"
	status := models.StatusRejected
	updated, err := svc.UpdateReport(ctx, created.ID, &dto.UpdateReportRequest{Cause: &cause, Status: &status})
	if err != nil {
		t.Fatalf("UpdateReport() error = %v", err)
	}
	if updated.Cause != "fraud" {
		t.Errorf("Cause = %q, want fraud", updated.Cause)
	}
	if updated.Status != models.StatusRejected {
		t.Errorf("Status = %q, want rejected", updated.Status)
	}
	// Fields outside the allow-list are untouched.
	if updated.ReportsCount != created.ReportsCount {
		t.Errorf("ReportsCount changed: %d -> %d", created.ReportsCount, updated.ReportsCount)
	}

	_, err = svc.UpdateReport(ctx, uuid.New(), &dto.UpdateReportRequest{Status: &status})
	if !errors.Is(err, ErrReportNotFound) {
		t.Errorf("UpdateReport(unknown) error = %v, want ErrReportNotFound", err)
	}
}

func TestDeleteReport(t *testing.T) {
	svc, db := newTestReportService(t, 5)
	ctx := context.Background()

	created, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://d.test/"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteReport(ctx, created.ID); err != nil {
		t.Fatalf("DeleteReport() error = %v", err)
	}
	if _, err := svc.GetReport(ctx, created.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("GetReport() after delete error = %v, want ErrReportNotFound", err)
	}
	var entries int64
	db.Model(&models.ReportEntry{}).Where("report_id = ?", created.ID).Count(&entries)
	if entries != 0 {
		t.Errorf("entry count after delete = %d, want 0", entries)
	}

	if err := svc.DeleteReport(ctx, uuid.New()); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("DeleteReport(unknown) error = %v, want ErrReportNotFound", err)
	}
}

func TestApprovedURLs(t *testing.T) {
	svc, _ := newTestReportService(t, 2)
	ctx := context.Background()

	// Two URLs over the threshold, one below.
	for _, url := range []string{"https://bad-b.test/", "https://bad-a.test/"} {
		for i := 0; i < 2; i++ {
			if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest(url)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if _, err := svc.SubmitReport(ctx, testUserID(t), submitRequest("https://fine.test/")); err != nil {
		t.Fatal(err)
	}

	urls, err := svc.ApprovedURLs(ctx)
	if err != nil {
		t.Fatalf("ApprovedURLs() error = %v", err)
	}
	want := []string{"https://bad-a.test/", "https://bad-b.test/"}
	if len(urls) != len(want) {
		t.Fatalf("len(urls) = %d, want %d (%v)", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestApprovedURLsEmpty(t *testing.T) {
	svc, _ := newTestReportService(t, 5)

	urls, err := svc.ApprovedURLs(context.Background())
	if err != nil {
		t.Fatalf("ApprovedURLs() error = %v", err)
	}
	if urls == nil {
		t.Error("ApprovedURLs() = nil, want empty slice")
	}
	if len(urls) != 0 {
		t.Errorf("len(urls) = %d, want 0", len(urls))
	}
}
