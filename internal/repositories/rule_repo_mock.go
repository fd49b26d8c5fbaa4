package repositories

import (
	"fmt"
	"sync"

	"labelguard/internal/models"

	"github.com/google/uuid"
)

// MockRuleRepository is an in-memory implementation of RuleRepository.
type MockRuleRepository struct {
	rules map[string]models.Rule
	order []string // insertion order, listings must be stable
	mu    sync.RWMutex
}

// NewMockRuleRepository creates a new instance of MockRuleRepository.
func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		rules: make(map[string]models.Rule),
	}
}

// GetAll returns all rules in insertion order.
func (r *MockRuleRepository) GetAll() ([]models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ruleList := make([]models.Rule, 0, len(r.rules))
	for _, id := range r.order {
		ruleList = append(ruleList, r.rules[id])
	}
	return ruleList, nil
}

// GetActive returns only enabled rules, in insertion order.
func (r *MockRuleRepository) GetActive() ([]models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []models.Rule
	for _, id := range r.order {
		if rule := r.rules[id]; rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

// GetByTargetField returns the rules inspecting one label field.
func (r *MockRuleRepository) GetByTargetField(field string) ([]models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Rule
	for _, id := range r.order {
		if rule := r.rules[id]; rule.TargetField == field {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

// GetByID returns a rule by its ID.
func (r *MockRuleRepository) GetByID(id string) (*models.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
	}
	return &rule, nil
}

// Create adds a new rule.
func (r *MockRuleRepository) Create(rule *models.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if _, ok := r.rules[rule.ID]; !ok {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = *rule
	return nil
}

// Update modifies an existing rule.
func (r *MockRuleRepository) Update(rule *models.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rules[rule.ID]
	if !ok {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, rule.ID)
	}
	r.rules[rule.ID] = *rule
	return nil
}

// SetActive toggles whether a rule participates in evaluation.
func (r *MockRuleRepository) SetActive(id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
	}
	rule.Active = active
	r.rules[id] = rule
	return nil
}

// Delete removes a rule by its ID.
func (r *MockRuleRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rules[id]
	if !ok {
		return fmt.Errorf("%w: rule with ID %s", ErrNotFound, id)
	}
	delete(r.rules, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
