package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"gorm.io/gorm"
)

const maxPublishAttempts = 5

// GormCategoryImageRepository is the GORM implementation of CategoryImageRepository
type GormCategoryImageRepository struct {
	db *gorm.DB
}

func NewGormCategoryImageRepository(db *gorm.DB) *GormCategoryImageRepository {
	return &GormCategoryImageRepository{db: db}
}

func (r *GormCategoryImageRepository) List(ctx context.Context) ([]domain.CategoryImage, error) {
	rows := []domain.CategoryImage{}
	if err := r.db.WithContext(ctx).Order("category ASC").Find(&rows).Error; err != nil {
		return nil, storageError(err, "Failed to query category images")
	}
	return rows, nil
}

func (r *GormCategoryImageRepository) Get(ctx context.Context, category string) (*domain.CategoryImage, error) {
	var img domain.CategoryImage
	err := r.db.WithContext(ctx).Where("category = ?", category).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Category image not found")
	} else if err != nil {
		return nil, storageError(err, "Failed to query category image")
	}
	return &img, nil
}

func (r *GormCategoryImageRepository) Publish(ctx context.Context, category, path, checksum string) (*domain.CategoryImage, error) {
	db := r.db.WithContext(ctx)
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		now := time.Now()
		current, err := r.Get(ctx, category)
		if errors.Is(err, domain.ErrNotFound) {
			row := domain.CategoryImage{Category: category, Path: path, Checksum: checksum, Version: 1, UpdatedAt: now}
			if err := db.Create(&row).Error; err == nil {
				return &row, nil
			} else if !r.exists(db, category) {
				return nil, storageError(err, "Failed to save category image")
			}
			// another writer created the row first, retry as an update
			continue
		} else if err != nil {
			return nil, err
		}

		res := db.Model(&domain.CategoryImage{}).
			Where("category = ? AND version = ?", category, current.Version).
			Updates(map[string]interface{}{
				"path":       path,
				"checksum":   checksum,
				"version":    current.Version + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return nil, storageError(res.Error, "Failed to save category image")
		}
		if res.RowsAffected == 1 {
			current.Path = path
			current.Checksum = checksum
			current.Version++
			current.UpdatedAt = now
			return current, nil
		}
	}
	return nil, domain.NewConflictError("Category image %s changed concurrently, try again", category)
}

func (r *GormCategoryImageRepository) exists(db *gorm.DB, category string) bool {
	var count int64
	db.Model(&domain.CategoryImage{}).Where("category = ?", category).Count(&count)
	return count > 0
}
