package domain

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is customer feedback attached to a product
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID string    `gorm:"column:product_id;size:36;index;not null" json:"productId"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text;not null" json:"review"`
	ImageURL  *string   `gorm:"column:image_url;size:1024" json:"imageUrl"`
	VideoURL  *string   `gorm:"column:video_url;size:1024" json:"videoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName Specify table name
func (Review) TableName() string {
	return "review"
}

func (r *Review) Validate() error {
	switch {
	case strings.TrimSpace(r.ProductID) == "":
		return NewValidationError("productId is required")
	case strings.TrimSpace(r.Name) == "":
		return NewValidationError("name is required")
	case strings.TrimSpace(r.Review) == "":
		return NewValidationError("review is required")
	case r.Rating < MinRating || r.Rating > MaxRating:
		return NewValidationError("rating must be between 1 and 5")
	}
	return nil
}

// ReviewSummary aggregates the ratings of one product
type ReviewSummary struct {
	ProductID string  `json:"productId"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Median    float64 `json:"median"`
}
