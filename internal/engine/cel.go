package engine

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"labelguard/internal/models"
)

// celCostLimit bounds expression evaluation so a pathological custom
// rule cannot exhaust resources.
const celCostLimit = 1_000_000

// NewCELEvaluator compiles a CEL expression into an Evaluator for a
// custom-kind rule. The expression sees the product's label fields as
// a `product` map keyed by target field name and must evaluate to a
// boolean; true means the product complies.
func NewCELEvaluator(expression string) (Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("product", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := env.Program(ast, cel.CostLimit(celCostLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	return func(rule models.Rule, product models.Product) (*Violation, error) {
		out, _, err := prog.Eval(map[string]any{
			"product": productFacts(product),
		})
		if err != nil {
			return nil, fmt.Errorf("evaluation error: %w", err)
		}
		// Non-boolean results are treated as a failed check rather
		// than silently passing the product.
		if compliant, ok := out.Value().(bool); ok && compliant {
			return nil, nil
		}
		severity := rule.Severity
		if severity == "" {
			severity = models.SeverityMedium
		}
		return &Violation{
			Field:    rule.TargetField,
			RuleName: rule.Name,
			Message:  fmt.Sprintf("custom check %q failed", rule.Name),
			Severity: severity,
		}, nil
	}, nil
}

// productFacts exposes the label fields to a CEL expression under
// their target field names.
func productFacts(p models.Product) map[string]any {
	return map[string]any{
		string(FieldName):                p.Name,
		string(FieldManufacturer):        p.Manufacturer,
		string(FieldMRP):                 p.MRP,
		string(FieldNetQuantity):         p.NetQuantity,
		string(FieldCountryOfOrigin):     p.CountryOfOrigin,
		string(FieldConsumerCareDetails): p.ConsumerCareDetails,
		string(FieldDateOfManufacture):   p.DateOfManufacture,
	}
}
