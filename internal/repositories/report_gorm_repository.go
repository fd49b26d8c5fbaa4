package repositories

import (
	"errors"
	"fmt"

	"labelguard/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

// NewGORMReportRepository creates a new instance of GORMReportRepository.
func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{
		db: db,
	}
}

// GetAll retrieves all violation reports, newest first.
func (r *GORMReportRepository) GetAll() ([]models.ViolationReport, error) {
	var reports []models.ViolationReport
	if err := r.db.Order("created_at desc").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to get all reports: %w", err)
	}
	return reports, nil
}

// GetByProductID retrieves the reports filed against one product.
func (r *GORMReportRepository) GetByProductID(productID string) ([]models.ViolationReport, error) {
	var reports []models.ViolationReport
	if err := r.db.Where("product_id = ?", productID).Order("created_at desc").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to get reports for product %s: %w", productID, err)
	}
	return reports, nil
}

// GetByID retrieves a single report by its ID.
func (r *GORMReportRepository) GetByID(id string) (*models.ViolationReport, error) {
	var report models.ViolationReport
	if err := r.db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get report by ID %s: %w", id, err)
	}
	return &report, nil
}

// Create creates a new violation report.
func (r *GORMReportRepository) Create(report *models.ViolationReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.Status == "" {
		report.Status = models.ReportOpen
	}
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// UpdateStatus sets the review status of a report.
func (r *GORMReportRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.ViolationReport{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for report %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
	}
	return nil
}

// Delete deletes a report by its ID.
func (r *GORMReportRepository) Delete(id string) error {
	res := r.db.Delete(&models.ViolationReport{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
	}
	return nil
}
