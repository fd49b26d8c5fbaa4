package services

import (
	"fmt"
	"log"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
)

// RuleService handles business logic for compliance rule authoring and
// rule set management. Every write path decodes and re-validates the
// rule value against its kind, so a stored rule is always structurally
// consistent with its declared kind.
type RuleService struct {
	repo   repositories.RuleRepository
	engine *engine.Engine
}

// NewRuleService creates a new RuleService.
func NewRuleService(repo repositories.RuleRepository, eng *engine.Engine) *RuleService {
	return &RuleService{
		repo:   repo,
		engine: eng,
	}
}

// GetAllRules retrieves rules, optionally filtered to active rules or
// to one target field.
func (s *RuleService) GetAllRules(activeOnly bool, targetField string) ([]models.Rule, error) {
	if targetField != "" {
		if !engine.IsTargetField(targetField) {
			return nil, fmt.Errorf("%w: %q", engine.ErrInvalidTargetField, targetField)
		}
		rules, err := s.repo.GetByTargetField(targetField)
		if err != nil {
			return nil, err
		}
		if !activeOnly {
			return rules, nil
		}
		var active []models.Rule
		for _, rule := range rules {
			if rule.Active {
				active = append(active, rule)
			}
		}
		return active, nil
	}
	if activeOnly {
		return s.repo.GetActive()
	}
	return s.repo.GetAll()
}

// GetRuleByID retrieves a single rule by its ID.
func (s *RuleService) GetRuleByID(id string) (*models.Rule, error) {
	return s.repo.GetByID(id)
}

// CreateRule validates the authoring input, canonicalizes the value
// text for the declared kind, and persists the rule. New rules are
// active by default.
func (s *RuleService) CreateRule(rule *models.Rule, valueText string) error {
	if err := s.canonicalize(rule, valueText); err != nil {
		return err
	}
	rule.Active = true
	if err := s.repo.Create(rule); err != nil {
		return err
	}
	s.syncEvaluator(rule)
	return nil
}

// UpdateRule replaces a rule's definition. Kind and value are
// re-validated together, so changing the kind without a matching value
// is rejected before anything is written. The active flag and authoring
// metadata are carried over from the stored rule; an edit only touches
// the definition.
func (s *RuleService) UpdateRule(rule *models.Rule, valueText string) error {
	existing, err := s.repo.GetByID(rule.ID)
	if err != nil {
		return err
	}
	if err := s.canonicalize(rule, valueText); err != nil {
		return err
	}
	rule.Active = existing.Active
	rule.CreatedBy = existing.CreatedBy
	rule.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(rule); err != nil {
		return err
	}
	s.syncEvaluator(rule)
	return nil
}

// SetActive toggles whether a rule participates in evaluation. The
// rule itself is retained either way.
func (s *RuleService) SetActive(id string, active bool) error {
	return s.repo.SetActive(id, active)
}

// DeleteRule removes a rule. Deleting an unknown id returns the
// repository's not-found error.
func (s *RuleService) DeleteRule(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.engine.DeregisterEvaluator(id)
	return nil
}

// RegisterCustomEvaluators compiles and registers evaluators for all
// stored custom rules. Called once at startup so custom rules written
// in CEL take effect without a rule edit.
func (s *RuleService) RegisterCustomEvaluators() error {
	rules, err := s.repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load rules for evaluator registration: %w", err)
	}
	for i := range rules {
		s.syncEvaluator(&rules[i])
	}
	return nil
}

// canonicalize validates name, target field and kind, decodes the
// authoring text for the kind, and stores the canonical JSON form.
func (s *RuleService) canonicalize(rule *models.Rule, valueText string) error {
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if !engine.IsTargetField(rule.TargetField) {
		return fmt.Errorf("%w: %q", engine.ErrInvalidTargetField, rule.TargetField)
	}
	value, err := engine.DecodeText(engine.Kind(rule.Kind), valueText)
	if err != nil {
		return err
	}
	canonical, err := engine.MarshalValue(value)
	if err != nil {
		return err
	}
	rule.Value = canonical
	if rule.Severity == "" {
		rule.Severity = models.SeverityMedium
	}
	return nil
}

// syncEvaluator keeps the engine's custom evaluator registry in step
// with a rule's definition. A custom value that does not compile as a
// CEL expression is left unregistered; the engine then skips the rule,
// which keeps non-CEL custom rules available to out-of-process
// evaluators.
func (s *RuleService) syncEvaluator(rule *models.Rule) {
	if rule.Kind != string(engine.KindCustom) {
		s.engine.DeregisterEvaluator(rule.ID)
		return
	}
	value, err := engine.UnmarshalValue(engine.KindCustom, rule.Value)
	if err != nil {
		s.engine.DeregisterEvaluator(rule.ID)
		return
	}
	fn, err := engine.NewCELEvaluator(value.Expr)
	if err != nil {
		log.Printf("Custom rule %s is not a CEL expression, leaving it to external evaluators: %v", rule.ID, err)
		s.engine.DeregisterEvaluator(rule.ID)
		return
	}
	s.engine.RegisterEvaluator(rule.ID, fn)
}
