package domain

import (
	"regexp"
	"strings"
	"time"
)

var categoryPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// CategoryImage is the representative image of a part type in the browse tiles.
// Version is bumped with compare-and-swap on each upload.
type CategoryImage struct {
	Category  string    `gorm:"primaryKey;size:64" json:"category"`
	Path      string    `gorm:"size:1024;not null" json:"path"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (CategoryImage) TableName() string {
	return "category_image"
}

// NormalizeCategory lower-cases a category name and checks it is a safe slug
func NormalizeCategory(name string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	if !categoryPattern.MatchString(slug) {
		return "", NewValidationError("category must be 1-64 characters of a-z, 0-9 or '-'")
	}
	return slug, nil
}
