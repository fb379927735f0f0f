package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/pkg/common"
	"gorm.io/gorm"
)

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows := []domain.Product{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, storageError(err, "Failed to query products")
	}
	return rows, nil
}

func (r *GormProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Product not found")
	} else if err != nil {
		return nil, storageError(err, "Failed to query product")
	}
	return &p, nil
}

func (r *GormProductRepository) GetByPartID(ctx context.Context, partID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("part_id = ?", strings.TrimSpace(partID)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Product %s not found", partID)
	} else if err != nil {
		return nil, storageError(err, "Failed to query product")
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.PartID = strings.TrimSpace(p.PartID)
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	exists, err := r.partIDTaken(db, p.PartID, "")
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError("Part ID %s already exists", p.PartID)
	}

	p.ID = common.UUID()
	p.CreatedAt = time.Now()
	if err := db.Create(p).Error; err != nil {
		// lost a race against a concurrent insert of the same part id
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("Part ID %s already exists", p.PartID)
		}
		if taken, _ := r.partIDTaken(db, p.PartID, p.ID); taken {
			return domain.NewConflictError("Part ID %s already exists", p.PartID)
		}
		return storageError(err, "Failed to create product")
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := patch.Changes()
	if len(updates) == 0 {
		return current, nil
	}

	db := r.db.WithContext(ctx)
	if partID, ok := updates["part_id"].(string); ok && partID != current.PartID {
		taken, err := r.partIDTaken(db, partID, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewConflictError("Part ID %s already exists", partID)
		}
	}

	if err := db.Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewConflictError("Part ID already exists")
		}
		return nil, storageError(err, "Failed to update product")
	}
	return r.Get(ctx, id)
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("product_id = ?", id).Delete(&domain.Review{}).Error
	})
	if err != nil {
		return false, storageError(err, "Failed to delete product")
	}
	return deleted, nil
}

func (r *GormProductRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("image_url IS NOT NULL AND image_url <> ''").
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, storageError(err, "Failed to query product images")
	}
	return urls, nil
}

func (r *GormProductRepository) partIDTaken(db *gorm.DB, partID, exceptID string) (bool, error) {
	var count int64
	q := db.Model(&domain.Product{}).Where("part_id = ?", partID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, storageError(err, "Failed to query products")
	}
	return count > 0, nil
}
