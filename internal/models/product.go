package models

import "gorm.io/gorm"

// Compliance status values for a product.
const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non-compliant"
	StatusPending      = "pending"
)

// Product represents a listed product and its label declarations.
// The label fields hold the text as printed on the package; numeric
// checks (MRP, net quantity) parse them at evaluation time.
type Product struct {
	ID                  string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                string `json:"name" validate:"required,min=2,max=200"`
	Manufacturer        string `json:"manufacturer" validate:"omitempty,max=200"`
	MRP                 string `json:"mrp" validate:"omitempty,max=50"`
	NetQuantity         string `json:"net_quantity" validate:"omitempty,max=100"`
	CountryOfOrigin     string `json:"country_of_origin" validate:"omitempty,max=100"`
	ConsumerCareDetails string `json:"consumer_care_details" validate:"omitempty,max=500"`
	DateOfManufacture   string `json:"date_of_manufacture" validate:"omitempty,max=50"`
	ImageURL            string `json:"image_url" validate:"omitempty,url"`
	ComplianceStatus    string `json:"compliance_status" gorm:"type:varchar(20);default:pending" validate:"omitempty,oneof=compliant non-compliant pending"`
	CreatedBy           string `json:"created_by" validate:"omitempty,uuid"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
