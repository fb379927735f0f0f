package repository

import (
	"context"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/pkg/common"
	"gorm.io/gorm"
)

// GormReviewRepository is the GORM implementation of ReviewRepository
type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows := []domain.Review{}
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageError(err, "Failed to query reviews")
	}
	return rows, nil
}

func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	review.Name = strings.TrimSpace(review.Name)
	if err := review.Validate(); err != nil {
		return err
	}
	review.ID = common.UUID()
	review.CreatedAt = time.Now()
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return storageError(err, "Failed to create review")
	}
	return nil
}

func (r *GormReviewRepository) Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("product_id = ?", productID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, storageError(err, "Failed to query reviews")
	}

	summary := &domain.ReviewSummary{ProductID: productID, Count: len(ratings)}
	if len(ratings) == 0 {
		return summary, nil
	}
	data := stats.LoadRawData(ratings)
	if mean, err := stats.Mean(data); err == nil {
		summary.Average, _ = stats.Round(mean, 2)
	}
	if median, err := stats.Median(data); err == nil {
		summary.Median = median
	}
	return summary, nil
}

func (r *GormReviewRepository) MediaURLs(ctx context.Context) ([]string, error) {
	var rows []domain.Review
	err := r.db.WithContext(ctx).
		Select("image_url", "video_url").
		Where("image_url IS NOT NULL OR video_url IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, storageError(err, "Failed to query review media")
	}
	urls := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := common.StringValue(row.ImageURL); v != "" {
			urls = append(urls, v)
		}
		if v := common.StringValue(row.VideoURL); v != "" {
			urls = append(urls, v)
		}
	}
	return urls, nil
}
