package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rapidautoparts/storefront/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// List returns every product in creation order
	List(ctx context.Context) ([]domain.Product, error)

	// Get retrieves a product by its generated id
	Get(ctx context.Context, id string) (*domain.Product, error)

	// GetByPartID retrieves a product by its business key
	GetByPartID(ctx context.Context, partID string) (*domain.Product, error)

	// Create assigns id and createdAt, applies defaults and inserts the row
	Create(ctx context.Context, p *domain.Product) error

	// Update applies the supplied patch fields only
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)

	// Delete removes the product and its reviews, reporting whether a product row existed
	Delete(ctx context.Context, id string) (bool, error)

	// ImageURLs lists every stored product image url
	ImageURLs(ctx context.Context) ([]string, error)
}

// ReviewRepository handles database operations for product reviews
type ReviewRepository interface {
	// ListByProduct returns the reviews of a product in creation order
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// Create assigns id and createdAt and inserts the row
	Create(ctx context.Context, r *domain.Review) error

	// Summary aggregates the ratings of a product
	Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error)

	// MediaURLs lists every stored review image and video url
	MediaURLs(ctx context.Context) ([]string, error)
}

// CategoryImageRepository tracks the current image of each part category
type CategoryImageRepository interface {
	List(ctx context.Context) ([]domain.CategoryImage, error)
	Get(ctx context.Context, category string) (*domain.CategoryImage, error)

	// Publish stores the new image path and advances the version with compare-and-swap
	Publish(ctx context.Context, category, path, checksum string) (*domain.CategoryImage, error)
}

// OperatorRepository handles admin operator accounts
type OperatorRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.AdminOperator, error)
	Create(ctx context.Context, op *domain.AdminOperator) error
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}

// AdminLogRepository handles the management audit trail
type AdminLogRepository interface {
	Create(ctx context.Context, log *domain.AdminLog) error
	List(ctx context.Context, filter AdminLogFilter, page, pageSize int) ([]domain.AdminLog, int64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// AdminLogFilter narrows an audit log listing; empty fields match all
type AdminLogFilter struct {
	Operator string
	Action   string
	Since    time.Time
}

// Repositories bundles the GORM implementations sharing one connection
type Repositories struct {
	Products       *GormProductRepository
	Reviews        *GormReviewRepository
	CategoryImages *GormCategoryImageRepository
	Operators      *GormOperatorRepository
	AdminLogs      *GormAdminLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Products:       NewGormProductRepository(db),
		Reviews:        NewGormReviewRepository(db),
		CategoryImages: NewGormCategoryImageRepository(db),
		Operators:      NewGormOperatorRepository(db),
		AdminLogs:      NewGormAdminLogRepository(db),
	}
}

func storageError(err error, message string) error {
	return domain.NewStorageError(errors.Wrap(err, message), message)
}
