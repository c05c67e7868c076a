package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/middleware"
	"github.com/urlsentry/urlsentry-backend/internal/pagination"
	"github.com/urlsentry/urlsentry-backend/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	report, err := h.reportService.SubmitReport(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateReport) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	page, err := h.reportService.QueryReports(c.Context(), query)
	if err != nil {
		return listQueryError(c, err)
	}
	return c.JSON(page)
}

func (h *ReportHandler) ListOwnReports(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	query, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	page, err := h.reportService.QueryOwnReports(c.Context(), userID, query)
	if err != nil {
		return listQueryError(c, err)
	}
	return c.JSON(page)
}

func (h *ReportHandler) GetApprovedURLs(c *fiber.Ctx) error {
	urls, err := h.reportService.ApprovedURLs(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch approved URLs",
		})
	}
	return c.JSON(dto.ApprovedURLsResponse{ApprovedURLs: urls})
}

func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.reportService.GetReport(c.Context(), reportID)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) UpdateReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	report, err := h.reportService.UpdateReport(c.Context(), reportID, &req)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	if err := h.reportService.DeleteReport(c.Context(), reportID); err != nil {
		return reportError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseListQuery decodes the shared filter/paging query parameters. Fiber's
// QueryParser would silently default malformed numbers, so limit and page are
// validated downstream by the pagination package.
func parseListQuery(c *fiber.Ctx) (*dto.ListReportsQuery, error) {
	var query dto.ListReportsQuery
	if err := c.QueryParser(&query); err != nil {
		return nil, errors.New("invalid query parameters")
	}
	return &query, nil
}

func listQueryError(c *fiber.Ctx, err error) error {
	var ve pagination.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed to fetch reports",
	})
}

func reportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
