package services_test

import (
	"testing"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
	"labelguard/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuleService() (*services.RuleService, *repositories.MockRuleRepository, *engine.Engine) {
	repo := repositories.NewMockRuleRepository()
	eng := engine.New()
	return services.NewRuleService(repo, eng), repo, eng
}

func TestRuleService_CreateRule(t *testing.T) {
	service, repo, _ := newRuleService()

	rule := models.Rule{Name: "MRP bounds", TargetField: "mrp", Kind: "range"}
	err := service.CreateRule(&rule, "0-1000")
	require.NoError(t, err)

	assert.NotEmpty(t, rule.ID)
	assert.True(t, rule.Active, "new rules default to active")
	assert.Equal(t, `{"min":0,"max":1000}`, rule.Value)
	assert.Equal(t, models.SeverityMedium, rule.Severity)

	stored, err := repo.GetByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.Value, stored.Value)
}

func TestRuleService_CreateRule_RejectsBadInput(t *testing.T) {
	service, _, _ := newRuleService()

	// empty name
	err := service.CreateRule(&models.Rule{TargetField: "mrp", Kind: "presence"}, "")
	assert.Error(t, err)

	// unknown target field
	err = service.CreateRule(&models.Rule{Name: "x", TargetField: "price", Kind: "presence"}, "")
	assert.ErrorIs(t, err, engine.ErrInvalidTargetField)

	// unknown kind
	err = service.CreateRule(&models.Rule{Name: "x", TargetField: "mrp", Kind: "fancy"}, "")
	assert.ErrorIs(t, err, engine.ErrInvalidRuleKind)

	// value that does not decode for the kind
	err = service.CreateRule(&models.Rule{Name: "x", TargetField: "mrp", Kind: "range"}, "10-5")
	assert.ErrorIs(t, err, engine.ErrMalformedRuleValue)

	err = service.CreateRule(&models.Rule{Name: "x", TargetField: "name", Kind: "regex"}, "[")
	assert.ErrorIs(t, err, engine.ErrInvalidPattern)
}

func TestRuleService_UpdateRule_RevalidatesKindAndValueTogether(t *testing.T) {
	service, repo, _ := newRuleService()

	rule := models.Rule{Name: "MRP bounds", TargetField: "mrp", Kind: "range"}
	require.NoError(t, service.CreateRule(&rule, "0-1000"))

	// changing the kind with a value that decodes for the new kind is fine
	updated := models.Rule{ID: rule.ID, Name: "MRP pattern", TargetField: "mrp", Kind: "regex"}
	require.NoError(t, service.UpdateRule(&updated, `\d+`))
	stored, err := repo.GetByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "regex", stored.Kind)
	assert.Equal(t, `{"pattern":"\\d+"}`, stored.Value)
	assert.True(t, stored.Active, "update preserves the active flag")

	// changing the kind with a value that does not match is rejected
	bad := models.Rule{ID: rule.ID, Name: "MRP bounds", TargetField: "mrp", Kind: "range"}
	err = service.UpdateRule(&bad, "not-a-range")
	assert.ErrorIs(t, err, engine.ErrMalformedRuleValue)

	// the stored rule is untouched after a rejected update
	stored, err = repo.GetByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "regex", stored.Kind)
}

func TestRuleService_UpdateRule_PreservesAuthor(t *testing.T) {
	service, repo, _ := newRuleService()

	rule := models.Rule{Name: "MRP bounds", TargetField: "mrp", Kind: "range", CreatedBy: "admin-uuid"}
	require.NoError(t, service.CreateRule(&rule, "0-1000"))

	// An edit payload carries no creator, like a request body
	updated := models.Rule{ID: rule.ID, Name: "MRP sanity bounds", TargetField: "mrp", Kind: "range"}
	require.NoError(t, service.UpdateRule(&updated, "0-500"))

	stored, err := repo.GetByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin-uuid", stored.CreatedBy, "the creator survives an edit")
	assert.Equal(t, "MRP sanity bounds", stored.Name)
	assert.Equal(t, `{"min":0,"max":500}`, stored.Value)
}

func TestRuleService_UpdateRule_NotFound(t *testing.T) {
	service, _, _ := newRuleService()

	rule := models.Rule{ID: "missing", Name: "x", TargetField: "mrp", Kind: "presence"}
	err := service.UpdateRule(&rule, "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRuleService_DeleteRule(t *testing.T) {
	service, _, _ := newRuleService()

	rule := models.Rule{Name: "MRP declared", TargetField: "mrp", Kind: "presence"}
	require.NoError(t, service.CreateRule(&rule, ""))

	assert.NoError(t, service.DeleteRule(rule.ID))
	assert.ErrorIs(t, service.DeleteRule(rule.ID), repositories.ErrNotFound)
}

func TestRuleService_SetActiveControlsListing(t *testing.T) {
	service, _, _ := newRuleService()

	rule := models.Rule{Name: "MRP declared", TargetField: "mrp", Kind: "presence"}
	require.NoError(t, service.CreateRule(&rule, ""))

	active, err := service.GetAllRules(true, "")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, service.SetActive(rule.ID, false))
	active, err = service.GetAllRules(true, "")
	require.NoError(t, err)
	assert.Empty(t, active, "a deactivated rule never shows in the active listing")

	// still retained
	all, err := service.GetAllRules(false, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, service.SetActive(rule.ID, true))
	active, err = service.GetAllRules(true, "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestRuleService_GetAllRules_TargetFieldFilter(t *testing.T) {
	service, _, _ := newRuleService()

	mrpRule := models.Rule{Name: "MRP declared", TargetField: "mrp", Kind: "presence"}
	require.NoError(t, service.CreateRule(&mrpRule, ""))
	originRule := models.Rule{Name: "Origin allowed", TargetField: "country_of_origin", Kind: "list"}
	require.NoError(t, service.CreateRule(&originRule, "India"))
	require.NoError(t, service.SetActive(originRule.ID, false))

	rules, err := service.GetAllRules(false, "mrp")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "MRP declared", rules[0].Name)

	rules, err = service.GetAllRules(true, "country_of_origin")
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = service.GetAllRules(false, "price")
	assert.ErrorIs(t, err, engine.ErrInvalidTargetField)
}

func TestRuleService_CustomRuleRegistersCELEvaluator(t *testing.T) {
	service, _, eng := newRuleService()

	rule := models.Rule{Name: "Has unit", TargetField: "net_quantity", Kind: "custom"}
	require.NoError(t, service.CreateRule(&rule, `product.net_quantity.endsWith(" g")`))

	product := models.Product{ID: "p1", Name: "Noodles", NetQuantity: "70"}
	result := eng.EvaluateAll([]models.Rule{rule}, product)
	assert.Len(t, result.Violations, 1, "CEL-backed custom rule is live after create")

	// a non-CEL custom value stays unregistered and is skipped
	opaque := models.Rule{Name: "External audit", TargetField: "name", Kind: "custom"}
	require.NoError(t, service.CreateRule(&opaque, "ticket ref LM-1042"))
	result = eng.EvaluateAll([]models.Rule{opaque}, product)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.Skipped)

	// deleting the rule removes its evaluator
	require.NoError(t, service.DeleteRule(rule.ID))
	result = eng.EvaluateAll([]models.Rule{rule}, product)
	assert.Empty(t, result.Violations)
}

func TestRuleService_RegisterCustomEvaluators(t *testing.T) {
	repo := repositories.NewMockRuleRepository()

	// simulate rules already in storage from a previous run
	raw, err := engine.MarshalValue(engine.Value{Kind: engine.KindCustom, Expr: `product.mrp != ""`})
	require.NoError(t, err)
	stored := models.Rule{ID: "r1", Name: "MRP set", TargetField: "mrp", Kind: "custom", Value: raw, Active: true}
	require.NoError(t, repo.Create(&stored))

	eng := engine.New()
	service := services.NewRuleService(repo, eng)
	require.NoError(t, service.RegisterCustomEvaluators())

	result := eng.EvaluateAll([]models.Rule{stored}, models.Product{ID: "p1", Name: "Noodles"})
	assert.Len(t, result.Violations, 1)
}
