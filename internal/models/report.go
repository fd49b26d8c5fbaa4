package models

import "gorm.io/gorm"

// Status values for a violation report.
const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// ViolationReport is a reviewer-filed report of a suspected label
// violation on a product. Reports are authored by people; they are not
// the output of the rule engine.
type ViolationReport struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID   string `json:"product_id" gorm:"type:varchar(36);index" validate:"required,uuid"`
	ReporterID  string `json:"reporter_id" gorm:"type:varchar(36)" validate:"omitempty,uuid"`
	Field       string `json:"field" gorm:"type:varchar(50)" validate:"required"`
	Description string `json:"description" validate:"required,max=1000"`
	Status      string `json:"status" gorm:"type:varchar(20);default:open" validate:"omitempty,oneof=open resolved dismissed"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
