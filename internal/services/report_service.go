package services

import (
	"fmt"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
)

// ReportService handles business logic for reviewer-filed violation
// reports.
type ReportService struct {
	reportRepo  repositories.ReportRepository
	productRepo repositories.ProductRepository
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo repositories.ReportRepository, productRepo repositories.ProductRepository) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		productRepo: productRepo,
	}
}

// GetAllReports retrieves all reports, optionally filtered to one
// product.
func (s *ReportService) GetAllReports(productID string) ([]models.ViolationReport, error) {
	if productID != "" {
		return s.reportRepo.GetByProductID(productID)
	}
	return s.reportRepo.GetAll()
}

// GetReportByID retrieves a single report by its ID.
func (s *ReportService) GetReportByID(id string) (*models.ViolationReport, error) {
	return s.reportRepo.GetByID(id)
}

// CreateReport files a new violation report. The reported product must
// exist and the reported field must be a known label field.
func (s *ReportService) CreateReport(report *models.ViolationReport) error {
	if !engine.IsTargetField(report.Field) {
		return fmt.Errorf("%w: %q", engine.ErrInvalidTargetField, report.Field)
	}
	if _, err := s.productRepo.GetByID(report.ProductID); err != nil {
		return fmt.Errorf("cannot file report: %w", err)
	}
	report.Status = models.ReportOpen
	return s.reportRepo.Create(report)
}

// UpdateReportStatus moves a report through its review lifecycle.
func (s *ReportService) UpdateReportStatus(id string, status string) error {
	validStatuses := map[string]bool{
		models.ReportOpen:      true,
		models.ReportResolved:  true,
		models.ReportDismissed: true,
	}
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid report status: %s", status)
	}

	if err := s.reportRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update status for report %s: %w", id, err)
	}
	return nil
}

// DeleteReport removes a report by its ID.
func (s *ReportService) DeleteReport(id string) error {
	return s.reportRepo.Delete(id)
}
