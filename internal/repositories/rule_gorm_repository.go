package repositories

import (
	"errors"
	"fmt"

	"labelguard/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRuleRepository is a GORM implementation of RuleRepository.
type GORMRuleRepository struct {
	db *gorm.DB
}

// NewGORMRuleRepository creates a new instance of GORMRuleRepository.
func NewGORMRuleRepository(db *gorm.DB) *GORMRuleRepository {
	return &GORMRuleRepository{
		db: db,
	}
}

// GetAll retrieves all rules in creation order.
func (r *GORMRuleRepository) GetAll() ([]models.Rule, error) {
	var rules []models.Rule
	if err := r.db.Order("created_at").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get all rules: %w", err)
	}
	return rules, nil
}

// GetActive retrieves only rules currently enabled for evaluation.
func (r *GORMRuleRepository) GetActive() ([]models.Rule, error) {
	var rules []models.Rule
	if err := r.db.Where("active = ?", true).Order("created_at").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get active rules: %w", err)
	}
	return rules, nil
}

// GetByTargetField retrieves the rules inspecting one label field.
func (r *GORMRuleRepository) GetByTargetField(field string) ([]models.Rule, error) {
	var rules []models.Rule
	if err := r.db.Where("target_field = ?", field).Order("created_at").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to get rules for field %s: %w", field, err)
	}
	return rules, nil
}

// GetByID retrieves a single rule by its ID.
func (r *GORMRuleRepository) GetByID(id string) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule by ID %s: %w", id, err)
	}
	return &rule, nil
}

// Create creates a new rule.
func (r *GORMRuleRepository) Create(rule *models.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if err := r.db.Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// Update updates an existing rule in place.
func (r *GORMRuleRepository) Update(rule *models.Rule) error {
	res := r.db.Save(rule)
	if res.Error != nil {
		return fmt.Errorf("failed to update rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, rule.ID)
	}
	return nil
}

// SetActive toggles whether a rule participates in evaluation.
func (r *GORMRuleRepository) SetActive(id string, active bool) error {
	res := r.db.Model(&models.Rule{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to set active for rule %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
	}
	return nil
}

// Delete deletes a rule by its ID.
func (r *GORMRuleRepository) Delete(id string) error {
	res := r.db.Delete(&models.Rule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
	}
	return nil
}
