package domain

import (
	"strings"
	"time"
)

// Product statuses
const (
	StatusInStock    = "In Stock"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusOutOfStock = "Out of Stock"
)

// Field defaults applied on create when the caller leaves them empty
const (
	DefaultCustomer   = "Pending"
	DefaultProtection = "90-Day Return"
	DefaultLocation   = "Nationwide"
)

var productStatuses = []string{StatusInStock, StatusProcessing, StatusShipped, StatusOutOfStock}

// ValidStatus reports whether s is one of the product statuses
func ValidStatus(s string) bool {
	for _, v := range productStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Product is a sellable auto part with vehicle fitment metadata
type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	PartID      string    `gorm:"column:part_id;size:64;not null;uniqueIndex:idx_product_part_id" json:"partId"`
	Type        string    `gorm:"size:64;not null" json:"type"`
	Year        int       `gorm:"not null" json:"year"`
	Make        string    `gorm:"size:100;not null" json:"make"`
	Model       string    `gorm:"size:100;not null" json:"model"`
	Details     string    `gorm:"type:text;not null" json:"details"`
	Price       int       `gorm:"not null" json:"price"`
	Status      string    `gorm:"size:20;index;not null" json:"status"`
	Customer    *string   `gorm:"size:200" json:"customer"`
	ImageURL    *string   `gorm:"column:image_url;size:1024" json:"imageUrl"`
	Protection  *string   `gorm:"size:200" json:"protection"`
	Location    *string   `gorm:"size:200" json:"location"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ApplyDefaults fills the optional fields that have a business default
func (p *Product) ApplyDefaults() {
	if strings.TrimSpace(p.Status) == "" {
		p.Status = StatusInStock
	}
	if p.Customer == nil {
		v := DefaultCustomer
		p.Customer = &v
	}
	if p.Protection == nil {
		v := DefaultProtection
		p.Protection = &v
	}
	if p.Location == nil {
		v := DefaultLocation
		p.Location = &v
	}
}

// Validate checks the required fields of a new product
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.PartID) == "":
		return NewValidationError("partId is required")
	case strings.TrimSpace(p.Type) == "":
		return NewValidationError("type is required")
	case p.Year <= 0:
		return NewValidationError("year is required")
	case strings.TrimSpace(p.Make) == "":
		return NewValidationError("make is required")
	case strings.TrimSpace(p.Model) == "":
		return NewValidationError("model is required")
	case strings.TrimSpace(p.Details) == "":
		return NewValidationError("details is required")
	case p.Price < 0:
		return NewValidationError("price must be >= 0")
	case !ValidStatus(p.Status):
		return NewValidationError("status must be one of 'In Stock', 'Processing', 'Shipped', 'Out of Stock'")
	}
	return nil
}

// InStock reports whether the product is listed in the public inventory
func (p *Product) InStock() bool {
	return p.Status == StatusInStock
}

// ProductPatch names every mutable product field; nil fields are left untouched
type ProductPatch struct {
	PartID      *string
	Type        *string
	Year        *int
	Make        *string
	Model       *string
	Details     *string
	Price       *int
	Status      *string
	Customer    *string
	ImageURL    *string
	Protection  *string
	Location    *string
	Description *string
}

// Empty reports whether the patch changes nothing
func (pp ProductPatch) Empty() bool {
	return len(pp.Changes()) == 0
}

// Validate checks each supplied field on its own
func (pp ProductPatch) Validate() error {
	required := map[string]*string{
		"partId":  pp.PartID,
		"type":    pp.Type,
		"make":    pp.Make,
		"model":   pp.Model,
		"details": pp.Details,
	}
	for _, name := range []string{"partId", "type", "make", "model", "details"} {
		if v := required[name]; v != nil && strings.TrimSpace(*v) == "" {
			return NewValidationError(name + " must not be empty")
		}
	}
	if pp.Year != nil && *pp.Year <= 0 {
		return NewValidationError("year must be > 0")
	}
	if pp.Price != nil && *pp.Price < 0 {
		return NewValidationError("price must be >= 0")
	}
	if pp.Status != nil && !ValidStatus(*pp.Status) {
		return NewValidationError("status must be one of 'In Stock', 'Processing', 'Shipped', 'Out of Stock'")
	}
	return nil
}

// Changes returns the column updates carried by the patch
func (pp ProductPatch) Changes() map[string]interface{} {
	updates := map[string]interface{}{}
	if pp.PartID != nil {
		updates["part_id"] = strings.TrimSpace(*pp.PartID)
	}
	if pp.Type != nil {
		updates["type"] = *pp.Type
	}
	if pp.Year != nil {
		updates["year"] = *pp.Year
	}
	if pp.Make != nil {
		updates["make"] = *pp.Make
	}
	if pp.Model != nil {
		updates["model"] = *pp.Model
	}
	if pp.Details != nil {
		updates["details"] = *pp.Details
	}
	if pp.Price != nil {
		updates["price"] = *pp.Price
	}
	if pp.Status != nil {
		updates["status"] = *pp.Status
	}
	if pp.Customer != nil {
		updates["customer"] = *pp.Customer
	}
	if pp.ImageURL != nil {
		// a blank URL clears the image
		if url := strings.TrimSpace(*pp.ImageURL); url != "" {
			updates["image_url"] = url
		} else {
			updates["image_url"] = nil
		}
	}
	if pp.Protection != nil {
		updates["protection"] = *pp.Protection
	}
	if pp.Location != nil {
		updates["location"] = *pp.Location
	}
	if pp.Description != nil {
		updates["description"] = *pp.Description
	}
	return updates
}
