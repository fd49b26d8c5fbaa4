package repositories

import (
	"labelguard/internal/models"
)

// ReportRepository defines the interface for violation report data access.
type ReportRepository interface {
	GetAll() ([]models.ViolationReport, error)
	GetByProductID(productID string) ([]models.ViolationReport, error)
	GetByID(id string) (*models.ViolationReport, error)
	Create(report *models.ViolationReport) error
	UpdateStatus(id string, status string) error
	Delete(id string) error
}
