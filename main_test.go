package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelguard/internal/models"
	"labelguard/internal/repositories"
)

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestNewAppHealthAndAuthBoundary(t *testing.T) {
	db, err := openDatabase("sqlite", "file:main_app_test?mode=memory&cache=shared")
	require.NoError(t, err)

	app, authService, err := NewApp(db, nil, "test_jwt_secret", false)
	require.NoError(t, err)
	require.NotNil(t, authService)

	// Health endpoint is public and reports that events are disabled
	// without a broker
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["events"])

	// Everything under /api/v1 except auth requires a token
	for _, path := range []string{"/api/v1/products", "/api/v1/rules", "/api/v1/reports"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s must require a token", path)
		resp.Body.Close()
	}
}

func TestSeedDefaultRules(t *testing.T) {
	db, err := openDatabase("sqlite", "file:main_seed_test?mode=memory&cache=shared")
	require.NoError(t, err)

	_, _, err = NewApp(db, nil, "test_jwt_secret", true)
	require.NoError(t, err)

	ruleRepo := repositories.NewGORMRuleRepository(db)
	rules, err := ruleRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, rules, 7)

	byName := make(map[string]models.Rule, len(rules))
	for _, rule := range rules {
		assert.True(t, rule.Active, "seeded rule %s must start active", rule.Name)
		byName[rule.Name] = rule
	}

	// The statutory declarations are present with canonical values
	assert.Equal(t, `{"required":true}`, byName["MRP declared"].Value)
	assert.Equal(t, models.SeverityHigh, byName["MRP declared"].Severity)
	assert.Equal(t, `{"min":0,"max":1000000}`, byName["MRP within sane bounds"].Value)
	assert.Equal(t, "date_of_manufacture", byName["Date of manufacture format"].TargetField)

	// Seeding again on a populated table is a no-op
	_, _, err = NewApp(db, nil, "test_jwt_secret", true)
	require.NoError(t, err)
	rules, err = ruleRepo.GetAll()
	require.NoError(t, err)
	assert.Len(t, rules, 7)
}
