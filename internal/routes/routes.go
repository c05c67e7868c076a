package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/urlsentry/urlsentry-backend/internal/authz"
	"github.com/urlsentry/urlsentry-backend/internal/config"
	"github.com/urlsentry/urlsentry-backend/internal/handlers"
	"github.com/urlsentry/urlsentry-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	pharosHandler *handlers.PharosHandler,
) {
	v1 := app.Group("/v1")

	// General API rate limiter: 60 req/min per IP
	v1.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	v1.Get("/health", healthHandler.Check)

	// Auth — public, throttled to 20 req per 15 min per IP; successful
	// requests don't count against the window.
	auth := v1.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:                    20,
		Expiration:             15 * time.Minute,
		SkipSuccessfulRequests: true,
		LimiterMiddleware:      limiter.SlidingWindow{},
		KeyGenerator:           func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// URL reports
	reports := v1.Group("/reports", middleware.JWTProtected(cfg))
	reports.Post("/", middleware.RequireCapability(authz.CreateReport), reportHandler.CreateReport)
	reports.Get("/", middleware.RequireCapability(authz.GetReports), reportHandler.ListReports)
	reports.Get("/mine", middleware.RequireCapability(authz.GetOwnReports), reportHandler.ListOwnReports)
	// Blocklist feed for authenticated consumers (e.g. the browser extension).
	reports.Get("/approved-urls", reportHandler.GetApprovedURLs)
	reports.Get("/:reportId", middleware.RequireCapability(authz.GetReports), reportHandler.GetReport)
	reports.Patch("/:reportId", middleware.RequireCapability(authz.ManageReports), reportHandler.UpdateReport)
	reports.Delete("/:reportId", middleware.RequireCapability(authz.ManageReports), reportHandler.DeleteReport)

	// Screenshot-capable variant
	pharos := v1.Group("/reports-pharos", middleware.JWTProtected(cfg))
	pharos.Post("/", middleware.RequireCapability(authz.CreateReportPharos), pharosHandler.CreateReport)
	pharos.Get("/", middleware.RequireCapability(authz.GetReportsPharos), pharosHandler.ListReports)
	pharos.Get("/:reportPharosId", middleware.RequireCapability(authz.GetReportsPharos), pharosHandler.GetReport)
	pharos.Patch("/:reportPharosId", middleware.RequireCapability(authz.ManageReportsPharos), pharosHandler.UpdateReport)
	pharos.Delete("/:reportPharosId", middleware.RequireCapability(authz.ManageReportsPharos), pharosHandler.DeleteReport)
}
