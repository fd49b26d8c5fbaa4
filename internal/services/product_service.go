package services

import (
	"log"

	"labelguard/internal/models"
	"labelguard/internal/repositories"
)

// ProductService handles business logic related to products. When a
// compliance service is attached, every create and update re-runs the
// active rule set against the product.
type ProductService struct {
	repo       repositories.ProductRepository
	compliance *ComplianceService
}

// NewProductService creates a new ProductService. compliance may be
// nil; products are then left pending until evaluated on demand.
func NewProductService(repo repositories.ProductRepository, compliance *ComplianceService) *ProductService {
	return &ProductService{
		repo:       repo,
		compliance: compliance,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product and evaluates it against the
// active rule set.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.reevaluate(product)
	return nil
}

// UpdateProduct updates an existing product and re-evaluates it; an
// edit can fix or introduce a label violation. The creator and the
// derived compliance status are carried over from the stored product,
// not taken from the edit.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	product.CreatedBy = existing.CreatedBy
	product.ComplianceStatus = existing.ComplianceStatus
	product.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.reevaluate(product)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// reevaluate refreshes the product's compliance status after a write.
// Evaluation failure never fails the write itself; the product simply
// keeps its previous status.
func (s *ProductService) reevaluate(product *models.Product) {
	if s.compliance == nil {
		return
	}
	outcome, err := s.compliance.EvaluateProduct(product.ID)
	if err != nil {
		log.Printf("Warning: failed to evaluate product %s after write: %v", product.ID, err)
		return
	}
	product.ComplianceStatus = outcome.Status
}
