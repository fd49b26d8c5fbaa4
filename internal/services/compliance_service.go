package services

import (
	"encoding/json"
	"log"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
	"labelguard/pkg/rabbitmq"
)

// EvaluationOutcome is the result of evaluating the active rule set
// against one product, plus the compliance status derived from it.
type EvaluationOutcome struct {
	ProductID  string             `json:"product_id"`
	Violations []engine.Violation `json:"violations"`
	Skipped    []string           `json:"skipped"`
	Status     string             `json:"status"`
}

// ComplianceService evaluates products against the active rule set,
// persists the resulting compliance status, and publishes violation
// events for downstream consumers.
type ComplianceService struct {
	productRepo repositories.ProductRepository
	ruleRepo    repositories.RuleRepository
	engine      *engine.Engine
	mqClient    *rabbitmq.Client
}

// NewComplianceService creates a new ComplianceService. mqClient may be
// nil; evaluation then runs without event publication.
func NewComplianceService(productRepo repositories.ProductRepository, ruleRepo repositories.RuleRepository, eng *engine.Engine, mqClient *rabbitmq.Client) *ComplianceService {
	return &ComplianceService{
		productRepo: productRepo,
		ruleRepo:    ruleRepo,
		engine:      eng,
		mqClient:    mqClient,
	}
}

// EvaluateProduct runs the active rule set against one product. The
// product's status becomes non-compliant when any rule fails,
// compliant when every rule passed, and stays pending when the only
// outcome was skipped rules, since nothing was actually certified.
func (s *ComplianceService) EvaluateProduct(id string) (*EvaluationOutcome, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	rules, err := s.ruleRepo.GetActive()
	if err != nil {
		return nil, err
	}

	result := s.engine.EvaluateAll(rules, *product)

	status := models.StatusCompliant
	switch {
	case len(result.Violations) > 0:
		status = models.StatusNonCompliant
	case len(result.Skipped) > 0:
		status = models.StatusPending
	}

	if err := s.productRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	if len(result.Violations) > 0 {
		s.publishViolations(*product, result)
	}

	return &EvaluationOutcome{
		ProductID:  id,
		Violations: result.Violations,
		Skipped:    result.Skipped,
		Status:     status,
	}, nil
}

// publishViolations emits a violation.detected event. Publication
// failures are logged, never surfaced; evaluation already succeeded.
func (s *ComplianceService) publishViolations(product models.Product, result engine.Result) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping violation event publication.")
		return
	}

	event := map[string]interface{}{
		"productID":  product.ID,
		"product":    product.Name,
		"violations": result.Violations,
		"skipped":    result.Skipped,
	}
	messageBody, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal violation event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("compliance", "violation.detected", messageBody); err != nil {
		log.Printf("Warning: Failed to publish violation event for product %s: %v", product.ID, err)
	} else {
		log.Printf("Successfully published violation event for product %s", product.ID)
	}
}
