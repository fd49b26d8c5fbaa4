package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"labelguard/internal/models"
)

// Violation is the outcome of one rule failing against one product.
// Violations are transient evaluation output; they are not persisted.
type Violation struct {
	Field    string `json:"field"`
	RuleName string `json:"rule_name"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Result is the outcome of evaluating a rule set against one product.
// Skipped lists the ids of rules whose stored value could not be
// interpreted; a corrupt rule never aborts the rest of the batch.
type Result struct {
	Violations []Violation `json:"violations"`
	Skipped    []string    `json:"skipped"`
}

// Evaluator is an externally supplied check for a custom-kind rule.
// Returning a nil violation means the product passes.
type Evaluator func(rule models.Rule, product models.Product) (*Violation, error)

// Engine evaluates compliance rules against products. It is safe for
// concurrent use; the only mutable state is the custom evaluator
// registry, guarded by an RWMutex.
type Engine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// New creates an Engine with an empty custom evaluator registry.
func New() *Engine {
	return &Engine{
		evaluators: make(map[string]Evaluator),
	}
}

// RegisterEvaluator installs the evaluator for a custom rule, keyed by
// rule id. Re-registering replaces the previous evaluator.
func (e *Engine) RegisterEvaluator(ruleID string, fn Evaluator) {
	e.mu.Lock()
	e.evaluators[ruleID] = fn
	e.mu.Unlock()
}

// DeregisterEvaluator removes the evaluator for a custom rule.
func (e *Engine) DeregisterEvaluator(ruleID string) {
	e.mu.Lock()
	delete(e.evaluators, ruleID)
	e.mu.Unlock()
}

func (e *Engine) lookupEvaluator(rule models.Rule) (Evaluator, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if fn, ok := e.evaluators[rule.ID]; ok {
		return fn, true
	}
	// Fall back to the rule name so evaluators can be wired up before
	// the rule's id is known.
	fn, ok := e.evaluators[rule.Name]
	return fn, ok
}

// Evaluate checks one rule against one product. It returns a nil
// violation when the product passes, and an error wrapping
// ErrCorruptRule when the rule's stored value does not match its kind.
// Custom rules without a registered evaluator are skipped silently.
func (e *Engine) Evaluate(rule models.Rule, product models.Product) (*Violation, error) {
	field := TargetField(rule.TargetField)
	if !IsTargetField(rule.TargetField) {
		return nil, fmt.Errorf("%w: rule %s targets unknown field %q", ErrCorruptRule, rule.ID, rule.TargetField)
	}

	value, err := UnmarshalValue(Kind(rule.Kind), rule.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s: %v", ErrCorruptRule, rule.ID, err)
	}

	raw := fieldValue(product, field)

	switch value.Kind {
	case KindPresence:
		return e.evalPresence(rule, field, raw), nil
	case KindRegex:
		return e.evalRegex(rule, value, field, raw), nil
	case KindList:
		return e.evalList(rule, value, field, raw), nil
	case KindRange:
		return e.evalRange(rule, value, field, raw), nil
	case KindCustom:
		fn, ok := e.lookupEvaluator(rule)
		if !ok {
			// Deliberate extension point: no evaluator means the rule
			// does not apply, not that evaluation failed.
			return nil, nil
		}
		v, err := fn(rule, product)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s custom evaluator: %v", ErrCorruptRule, rule.ID, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: rule %s has kind %q", ErrCorruptRule, rule.ID, rule.Kind)
}

// EvaluateAll checks every active rule in order against the product.
// Inactive rules are ignored. Rules that cannot be interpreted are
// recorded under Skipped instead of aborting the batch.
func (e *Engine) EvaluateAll(rules []models.Rule, product models.Product) Result {
	result := Result{
		Violations: []Violation{},
		Skipped:    []string{},
	}
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		violation, err := e.Evaluate(rule, product)
		if err != nil {
			result.Skipped = append(result.Skipped, rule.ID)
			continue
		}
		if violation != nil {
			result.Violations = append(result.Violations, *violation)
		}
	}
	return result
}

func (e *Engine) evalPresence(rule models.Rule, field TargetField, raw string) *Violation {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return e.violation(rule, field, fmt.Sprintf("field %q must be declared on the label", field))
	}
	if isNumericField(field) {
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return e.violation(rule, field, fmt.Sprintf("field %q must be a number, got %q", field, raw))
		}
	}
	return nil
}

func (e *Engine) evalRegex(rule models.Rule, value Value, field TargetField, raw string) *Violation {
	// Presence is a separate rule's responsibility.
	if raw == "" {
		return nil
	}
	re, err := regexp.Compile(anchorPattern(value.Pattern))
	if err != nil {
		// Validate accepted the bare pattern; anchoring a valid
		// pattern cannot make it invalid.
		return nil
	}
	if !re.MatchString(raw) {
		return e.violation(rule, field, fmt.Sprintf("field %q value %q does not match pattern %q", field, raw, value.Pattern))
	}
	return nil
}

func (e *Engine) evalList(rule models.Rule, value Value, field TargetField, raw string) *Violation {
	for _, allowed := range value.Allowed {
		if raw == allowed {
			return nil
		}
	}
	return e.violation(rule, field, fmt.Sprintf("field %q value %q is not one of the allowed values", field, raw))
}

func (e *Engine) evalRange(rule models.Rule, value Value, field TargetField, raw string) *Violation {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		// Absent or non-numeric values are a presence rule's concern.
		return nil
	}
	if n < value.Min || n > value.Max {
		return e.violation(rule, field, fmt.Sprintf("field %q value %v is outside the allowed range %s-%s", field, n, formatBound(value.Min), formatBound(value.Max)))
	}
	return nil
}

func (e *Engine) violation(rule models.Rule, field TargetField, message string) *Violation {
	severity := rule.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	return &Violation{
		Field:    string(field),
		RuleName: rule.Name,
		Message:  message,
		Severity: severity,
	}
}

// anchorPattern anchors a pattern at both ends for full-string
// matching, unless the author already used anchors.
func anchorPattern(pattern string) string {
	if strings.ContainsAny(pattern, "^$") {
		return pattern
	}
	return "^(?:" + pattern + ")$"
}

// isNumericField reports whether the label field is expected to hold a
// bare number. MRP is the only such field; quantities and dates carry
// units or formats of their own.
func isNumericField(field TargetField) bool {
	return field == FieldMRP
}

// fieldValue extracts the inspected label field from a product.
func fieldValue(p models.Product, field TargetField) string {
	switch field {
	case FieldName:
		return p.Name
	case FieldManufacturer:
		return p.Manufacturer
	case FieldMRP:
		return p.MRP
	case FieldNetQuantity:
		return p.NetQuantity
	case FieldCountryOfOrigin:
		return p.CountryOfOrigin
	case FieldConsumerCareDetails:
		return p.ConsumerCareDetails
	case FieldDateOfManufacture:
		return p.DateOfManufacture
	}
	return ""
}
