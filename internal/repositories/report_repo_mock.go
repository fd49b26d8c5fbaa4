package repositories

import (
	"fmt"
	"sync"
	"time"

	"labelguard/internal/models"

	"github.com/google/uuid"
)

// MockReportRepository is an in-memory implementation of ReportRepository.
type MockReportRepository struct {
	reports map[string]models.ViolationReport
	order   []string
	mu      sync.RWMutex
}

// NewMockReportRepository creates a new instance of MockReportRepository.
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{
		reports: make(map[string]models.ViolationReport),
	}
}

// GetAll returns all reports in insertion order.
func (r *MockReportRepository) GetAll() ([]models.ViolationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reportList := make([]models.ViolationReport, 0, len(r.reports))
	for _, id := range r.order {
		reportList = append(reportList, r.reports[id])
	}
	return reportList, nil
}

// GetByProductID returns the reports filed against one product.
func (r *MockReportRepository) GetByProductID(productID string) ([]models.ViolationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.ViolationReport
	for _, id := range r.order {
		if report := r.reports[id]; report.ProductID == productID {
			matched = append(matched, report)
		}
	}
	return matched, nil
}

// GetByID returns a report by its ID.
func (r *MockReportRepository) GetByID(id string) (*models.ViolationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
	}
	return &report, nil
}

// Create adds a new report.
func (r *MockReportRepository) Create(report *models.ViolationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.Status == "" {
		report.Status = models.ReportOpen
	}
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	if _, ok := r.reports[report.ID]; !ok {
		r.order = append(r.order, report.ID)
	}
	r.reports[report.ID] = *report
	return nil
}

// UpdateStatus sets the review status of a report.
func (r *MockReportRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
	}
	report.Status = status
	report.UpdatedAt = time.Now()
	r.reports[id] = report
	return nil
}

// Delete removes a report by its ID.
func (r *MockReportRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.reports[id]
	if !ok {
		return fmt.Errorf("%w: report with ID %s", ErrNotFound, id)
	}
	delete(r.reports, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
