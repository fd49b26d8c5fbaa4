package repositories

import (
	"labelguard/internal/models"
)

// RuleRepository defines the interface for compliance rule data access.
// Listings preserve creation order; evaluation depends on it.
type RuleRepository interface {
	GetAll() ([]models.Rule, error)
	GetActive() ([]models.Rule, error)
	GetByTargetField(field string) ([]models.Rule, error)
	GetByID(id string) (*models.Rule, error)
	Create(rule *models.Rule) error
	Update(rule *models.Rule) error
	SetActive(id string, active bool) error
	Delete(id string) error
}
