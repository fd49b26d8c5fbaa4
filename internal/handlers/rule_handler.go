package handlers

import (
	"errors"
	"fmt"
	"log"

	"labelguard/internal/engine"
	"labelguard/internal/models"
	"labelguard/internal/repositories"
	"labelguard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RuleHandler handles HTTP requests for compliance rules.
type RuleHandler struct {
	service  *services.RuleService
	validate *validator.Validate
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(service *services.RuleService) *RuleHandler {
	return &RuleHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the rule routes with the Fiber app. Rule
// authoring is restricted by the supplied admin middleware; reads stay
// open to any authenticated user.
func (h *RuleHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	ruleRoutes := router.Group("/rules")
	ruleRoutes.Get("/", h.HandleGetRules)
	ruleRoutes.Get("/:id", h.HandleGetRuleByID)
	ruleRoutes.Post("/", admin, h.HandleCreateRule)
	ruleRoutes.Put("/:id", admin, h.HandleUpdateRule)
	ruleRoutes.Delete("/:id", admin, h.HandleDeleteRule)
	ruleRoutes.Patch("/:id/active", admin, h.HandleSetActive)
}

// RuleRequest represents the authoring form of a rule. Value carries
// the single-line text representation for the declared kind; the
// service canonicalizes it.
type RuleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	TargetField string `json:"target_field" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=presence regex list range custom"`
	Value       string `json:"value"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Severity    string `json:"severity" validate:"omitempty,oneof=low medium high"`
}

// HandleGetRules retrieves rules, honoring ?active=true and
// ?target_field= filters.
func (h *RuleHandler) HandleGetRules(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	targetField := c.Query("target_field")

	rules, err := h.service.GetAllRules(activeOnly, targetField)
	if err != nil {
		log.Printf("Error getting rules: %v", err)
		if errors.Is(err, engine.ErrInvalidTargetField) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown target field",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve rules",
			"error":   err.Error(),
		})
	}
	return c.JSON(rules)
}

// HandleGetRuleByID retrieves a single rule, including the editable
// text form of its value for populating an edit form.
func (h *RuleHandler) HandleGetRuleByID(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	rule, err := h.service.GetRuleByID(ruleID)
	if err != nil {
		log.Printf("Error getting rule by ID %s: %v", ruleID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Rule with ID %s not found", ruleID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve rule",
			"error":   err.Error(),
		})
	}

	valueText := ""
	if value, err := engine.UnmarshalValue(engine.Kind(rule.Kind), rule.Value); err == nil {
		valueText = engine.EncodeText(value)
	}

	return c.JSON(fiber.Map{
		"rule":       rule,
		"value_text": valueText,
	})
}

// HandleCreateRule creates a new rule from its authoring form.
func (h *RuleHandler) HandleCreateRule(c *fiber.Ctx) error {
	req, res := h.parseRuleRequest(c)
	if req == nil {
		return res // response already written
	}

	rule := models.Rule{
		Name:        req.Name,
		TargetField: req.TargetField,
		Kind:        req.Kind,
		Description: req.Description,
		Severity:    req.Severity,
	}
	if creator, ok := c.Locals("user_id").(string); ok {
		rule.CreatedBy = creator
	}

	if err := h.service.CreateRule(&rule, req.Value); err != nil {
		return h.ruleWriteError(c, err, "Could not create rule")
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

// HandleUpdateRule replaces a rule's definition. Kind and value are
// validated together server-side.
func (h *RuleHandler) HandleUpdateRule(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	req, res := h.parseRuleRequest(c)
	if req == nil {
		return res
	}

	rule := models.Rule{
		ID:          ruleID,
		Name:        req.Name,
		TargetField: req.TargetField,
		Kind:        req.Kind,
		Description: req.Description,
		Severity:    req.Severity,
	}

	if err := h.service.UpdateRule(&rule, req.Value); err != nil {
		return h.ruleWriteError(c, err, "Could not update rule")
	}

	return c.JSON(rule)
}

// HandleDeleteRule deletes a rule by its ID.
func (h *RuleHandler) HandleDeleteRule(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	if err := h.service.DeleteRule(ruleID); err != nil {
		log.Printf("Error deleting rule %s: %v", ruleID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Rule with ID %s not found", ruleID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete rule",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Rule with ID %s deleted", ruleID),
	})
}

// HandleSetActive toggles whether a rule participates in evaluation.
func (h *RuleHandler) HandleSetActive(c *fiber.Ctx) error {
	ruleID := c.Params("id")
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil || body.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Request body must contain an 'active' boolean",
		})
	}

	if err := h.service.SetActive(ruleID, *body.Active); err != nil {
		log.Printf("Error setting active for rule %s: %v", ruleID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Rule with ID %s not found", ruleID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update rule",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Rule with ID %s active=%t", ruleID, *body.Active),
	})
}

// parseRuleRequest parses and validates the authoring form. On failure
// it writes the error response and returns a nil request.
func (h *RuleHandler) parseRuleRequest(c *fiber.Ctx) (*RuleRequest, error) {
	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing rule request body: %v", err)
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return &req, nil
}

// ruleWriteError maps rule authoring errors onto HTTP statuses. Codec
// errors are the author's to fix and come back as 400s.
func (h *RuleHandler) ruleWriteError(c *fiber.Ctx, err error, message string) error {
	log.Printf("%s: %v", message, err)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Rule not found",
			"error":   err.Error(),
		})
	case errors.Is(err, engine.ErrInvalidRuleKind),
		errors.Is(err, engine.ErrMalformedRuleValue),
		errors.Is(err, engine.ErrInvalidPattern),
		errors.Is(err, engine.ErrInvalidTargetField):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid rule definition",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
