package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/pkg/common"
	"gorm.io/gorm"
)

type GormOperatorRepository struct {
	db *gorm.DB
}

func NewGormOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

func (r *GormOperatorRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminOperator, error) {
	var op domain.AdminOperator
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("Operator not found")
	} else if err != nil {
		return nil, storageError(err, "Failed to query operator")
	}
	return &op, nil
}

func (r *GormOperatorRepository) Create(ctx context.Context, op *domain.AdminOperator) error {
	if op.ID == 0 {
		op.ID = common.UUIDint64()
	}
	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return storageError(err, "Failed to create operator")
	}
	return nil
}

func (r *GormOperatorRepository) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.AdminOperator{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_login": at, "updated_at": at}).Error
	if err != nil {
		return storageError(err, "Failed to update operator")
	}
	return nil
}

type GormAdminLogRepository struct {
	db *gorm.DB
}

func NewGormAdminLogRepository(db *gorm.DB) *GormAdminLogRepository {
	return &GormAdminLogRepository{db: db}
}

func (r *GormAdminLogRepository) Create(ctx context.Context, log *domain.AdminLog) error {
	if log.ID == 0 {
		log.ID = common.UUIDint64()
	}
	if log.OptTime.IsZero() {
		log.OptTime = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return storageError(err, "Failed to write admin log")
	}
	return nil
}

func (r *GormAdminLogRepository) List(ctx context.Context, filter AdminLogFilter, page, pageSize int) ([]domain.AdminLog, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.AdminLog{})
	if filter.Operator != "" {
		db = db.Where("operator = ?", filter.Operator)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		db = db.Where("opt_time >= ?", filter.Since)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, storageError(err, "Failed to query admin logs")
	}
	rows := []domain.AdminLog{}
	if err := db.Order("opt_time DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, storageError(err, "Failed to query admin logs")
	}
	return rows, total, nil
}

func (r *GormAdminLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("opt_time < ?", before).Delete(&domain.AdminLog{})
	if res.Error != nil {
		return 0, storageError(res.Error, "Failed to purge admin logs")
	}
	return res.RowsAffected, nil
}
