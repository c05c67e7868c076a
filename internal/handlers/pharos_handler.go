package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/urlsentry/urlsentry-backend/internal/dto"
	"github.com/urlsentry/urlsentry-backend/internal/middleware"
	"github.com/urlsentry/urlsentry-backend/internal/screenshot"
	"github.com/urlsentry/urlsentry-backend/internal/services"
)

type PharosHandler struct {
	pharosService *services.PharosService
}

func NewPharosHandler(pharosService *services.PharosService) *PharosHandler {
	return &PharosHandler{pharosService: pharosService}
}

// CreateReport accepts a multipart/form-data submission: text fields url,
// cause and description plus an optional "image" file.
func (h *PharosHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	req := dto.CreatePharosReportRequest{
		URL:         c.FormValue("url"),
		Cause:       c.FormValue("cause"),
		Description: c.FormValue("description"),
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	var shot *screenshot.Processed
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Unreadable image upload",
			})
		}
		defer file.Close()

		shot, err = screenshot.Process(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	report, err := h.pharosService.Submit(c.Context(), userID, &req, shot)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateReport) || errors.Is(err, services.ErrMissingTarget) {
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

func (h *PharosHandler) ListReports(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	page, err := h.pharosService.Query(c.Context(), query)
	if err != nil {
		return listQueryError(c, err)
	}
	return c.JSON(page)
}

func (h *PharosHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportPharosId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.pharosService.Get(c.Context(), reportID)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(report)
}

func (h *PharosHandler) UpdateReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportPharosId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.UpdatePharosReportRequest
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

	report, err := h.pharosService.Update(c.Context(), reportID, &req)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(report)
}

func (h *PharosHandler) DeleteReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("reportPharosId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	if err := h.pharosService.Delete(c.Context(), reportID); err != nil {
		return reportError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
