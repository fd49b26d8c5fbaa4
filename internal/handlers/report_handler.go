package handlers

import (
	"errors"
	"fmt"
	"log"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
	"labelguard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles HTTP requests for violation reports.
type ReportHandler struct {
	service  *services.ReportService
	validate *validator.Validate
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the report routes with the Fiber app.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	reportRoutes := router.Group("/reports")
	reportRoutes.Get("/", h.HandleGetReports)
	reportRoutes.Get("/:id", h.HandleGetReportByID)
	reportRoutes.Post("/", h.HandleCreateReport)
	reportRoutes.Patch("/:id/status", h.HandleUpdateReportStatus)
	reportRoutes.Delete("/:id", h.HandleDeleteReport)
}

// HandleGetReports retrieves all reports, honoring a ?product_id= filter.
func (h *ReportHandler) HandleGetReports(c *fiber.Ctx) error {
	reports, err := h.service.GetAllReports(c.Query("product_id"))
	if err != nil {
		log.Printf("Error getting reports: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve reports",
			"error":   err.Error(),
		})
	}
	return c.JSON(reports)
}

// HandleGetReportByID retrieves a single report by its ID.
func (h *ReportHandler) HandleGetReportByID(c *fiber.Ctx) error {
	reportID := c.Params("id")
	report, err := h.service.GetReportByID(reportID)
	if err != nil {
		log.Printf("Error getting report by ID %s: %v", reportID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Report with ID %s not found", reportID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve report",
			"error":   err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleCreateReport files a new violation report. The reporter is
// taken from the authenticated user, never from the request body.
func (h *ReportHandler) HandleCreateReport(c *fiber.Ctx) error {
	var report models.ViolationReport
	if err := c.BodyParser(&report); err != nil {
		log.Printf("Error parsing report request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if reporter, ok := c.Locals("user_id").(string); ok {
		report.ReporterID = reporter
	}
	report.Status = models.ReportOpen

	if err := h.validate.Struct(report); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.service.CreateReport(&report); err != nil {
		log.Printf("Error creating report: %v", err)
		switch {
		case errors.Is(err, engine.ErrInvalidTargetField):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown label field",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", report.ProductID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create report",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleUpdateReportStatus moves a report through its review lifecycle.
func (h *ReportHandler) HandleUpdateReportStatus(c *fiber.Ctx) error {
	reportID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdateReportStatus(reportID, updateData.Status); err != nil {
		log.Printf("Error updating status for report %s: %v", reportID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Report with ID %s not found", reportID),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update report status",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Report %s status updated to %s", reportID, updateData.Status),
	})
}

// HandleDeleteReport removes a report by its ID.
func (h *ReportHandler) HandleDeleteReport(c *fiber.Ctx) error {
	reportID := c.Params("id")
	if err := h.service.DeleteReport(reportID); err != nil {
		log.Printf("Error deleting report %s: %v", reportID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Report with ID %s not found", reportID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete report",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Report with ID %s deleted", reportID),
	})
}
