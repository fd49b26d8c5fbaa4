package models

import "gorm.io/gorm"

// Severity levels for a rule's violations.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Rule represents a configurable compliance check against one product
// label field. Value holds the canonical JSON form of the rule payload;
// its shape is determined by Kind and enforced by the engine codec.
type Rule struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" validate:"required,min=2,max=200"`
	TargetField string `json:"target_field" gorm:"type:varchar(50)" validate:"required"`
	Kind        string `json:"kind" gorm:"type:varchar(20)" validate:"required,oneof=presence regex list range custom"`
	Value       string `json:"value" gorm:"type:text"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Severity    string `json:"severity" gorm:"type:varchar(10);default:medium" validate:"omitempty,oneof=low medium high"`
	Active      bool   `json:"active" gorm:"default:true"`
	CreatedBy   string `json:"created_by" validate:"omitempty,uuid"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
