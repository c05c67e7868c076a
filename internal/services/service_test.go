package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/cache"
	"github.com/urlsentry/urlsentry-backend/internal/config"
	"github.com/urlsentry/urlsentry-backend/internal/models"
	"github.com/urlsentry/urlsentry-backend/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Report{},
		&models.ReportEntry{},
		&models.PharosReport{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestReportService(t *testing.T, threshold int) (*ReportService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewReportService(db, threshold, cache.NewApprovedURLCache(&config.Config{}), notify.New(&config.Config{}))
	return svc, db
}

func testUserID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}
