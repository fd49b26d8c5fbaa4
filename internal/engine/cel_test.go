package engine_test

import (
	"testing"

	"labelguard/internal/engine"
	"labelguard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCELEvaluator(t *testing.T) {
	fn, err := engine.NewCELEvaluator(`product.mrp != "" && product.country_of_origin == "India"`)
	require.NoError(t, err)

	rule := newRule(t, "r1", "Domestic MRP check", "mrp", engine.KindCustom, "cel")

	p := labeledProduct()
	v, err := fn(rule, p)
	assert.NoError(t, err)
	assert.Nil(t, v)

	p.CountryOfOrigin = "Elbonia"
	v, err = fn(rule, p)
	assert.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "mrp", v.Field)
	assert.Equal(t, "Domestic MRP check", v.RuleName)
	assert.Equal(t, models.SeverityMedium, v.Severity)
}

func TestNewCELEvaluator_CompileError(t *testing.T) {
	_, err := engine.NewCELEvaluator(`product.mrp !=`)
	assert.Error(t, err)
}

func TestNewCELEvaluator_NonBooleanResultFails(t *testing.T) {
	fn, err := engine.NewCELEvaluator(`product.name`)
	require.NoError(t, err)

	rule := newRule(t, "r1", "Odd expression", "name", engine.KindCustom, "cel")
	v, err := fn(rule, labeledProduct())
	assert.NoError(t, err)
	assert.NotNil(t, v) // a non-boolean result never certifies compliance
}

func TestEngineWithCELEvaluator(t *testing.T) {
	eng := engine.New()
	rule := newRule(t, "r1", "Quantity has unit", "net_quantity", engine.KindCustom, "cel")

	fn, err := engine.NewCELEvaluator(`product.net_quantity.endsWith(" g") || product.net_quantity.endsWith(" kg")`)
	require.NoError(t, err)
	eng.RegisterEvaluator(rule.ID, fn)

	p := labeledProduct()
	result := eng.EvaluateAll([]models.Rule{rule}, p)
	assert.Empty(t, result.Violations)

	p.NetQuantity = "70"
	result = eng.EvaluateAll([]models.Rule{rule}, p)
	assert.Len(t, result.Violations, 1)
}
