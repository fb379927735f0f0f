package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (a *Application) checkSuper() {
	ctx := context.Background()
	username := strings.TrimSpace(a.appConfig.Admin.Username)
	if username == "" {
		zap.L().Warn("admin username not configured, skip operator seeding")
		return
	}

	operator, err := a.repos.Operators.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.appConfig.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		if err := a.repos.Operators.Create(ctx, &domain.AdminOperator{
			Username: username,
			Password: string(hashed),
			Level:    "super",
			Status:   common.ENABLED,
		}); err != nil {
			zap.L().Error("failed to create default admin operator", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin operator", zap.String("username", username))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin operator", zap.Error(err))
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(operator.Password) == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.appConfig.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		updates["password"] = string(hashed)
	}
	if !strings.EqualFold(operator.Status, common.ENABLED) {
		updates["status"] = common.ENABLED
	}
	if len(updates) == 0 {
		return
	}
	updates["updated_at"] = time.Now()
	if err := a.gormDB.Model(&domain.AdminOperator{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin operator", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default admin operator", zap.String("username", username))
}

func seedProduct(partID, typ string, year int, vehicleMake, model, details string, price int, status, image string) domain.Product {
	return domain.Product{
		PartID:   partID,
		Type:     typ,
		Year:     year,
		Make:     vehicleMake,
		Model:    model,
		Details:  details,
		Price:    price,
		Status:   status,
		ImageURL: common.StringPtr(image),
	}
}

// checkProducts seeds a demo catalog for empty development databases
func (a *Application) checkProducts() {
	ctx := context.Background()
	defaultProducts := []domain.Product{
		seedProduct("ENG-001", "Engine", 2018, "Ford", "F-150", "5.0L V8 Coyote, 62k miles", 3450, domain.StatusInStock, "/images/engine-1.jpg"),
		seedProduct("TRN-002", "Transmission", 2016, "Toyota", "Camry", "6-speed automatic, tested", 1250, domain.StatusInStock, "/images/transmission-1.jpg"),
		seedProduct("CHS-003", "Chassis", 2015, "Chevrolet", "Silverado 1500", "Frame assembly, no rust", 2100, domain.StatusProcessing, "/images/chassis-1.jpg"),
		seedProduct("ENG-004", "Engine", 2019, "Honda", "Accord", "1.5L turbo, 40k miles", 2300, domain.StatusInStock, "/images/engine-1.jpg"),
		seedProduct("TRN-005", "Transmission", 2017, "Nissan", "Altima", "CVT, warranty included", 980, domain.StatusOutOfStock, "/images/transmission-1.jpg"),
		seedProduct("AXL-006", "Axle", 2020, "Ram", "1500", "Rear axle 3.92 ratio", 1400, domain.StatusInStock, "/images/axle-1.jpg"),
		seedProduct("DIF-007", "Differential", 2014, "Jeep", "Wrangler", "Dana 44 front differential", 890, domain.StatusShipped, "/images/differential-1.jpg"),
		seedProduct("ENG-008", "Engine", 2021, "Chevrolet", "Tahoe", "5.3L V8, 18k miles", 4100, domain.StatusInStock, "/images/engine-1.jpg"),
		seedProduct("AXL-009", "Axle", 2018, "Ford", "F-250", "Front axle assembly", 1650, domain.StatusInStock, "/images/axle-1.jpg"),
		seedProduct("TRN-010", "Transmission", 2019, "Ford", "Mustang", "10R80 automatic", 2750, domain.StatusInStock, "/images/transmission-1.jpg"),
	}

	for i := range defaultProducts {
		p := defaultProducts[i]
		if _, err := a.repos.Products.GetByPartID(ctx, p.PartID); err == nil {
			continue
		}
		if err := a.repos.Products.Create(ctx, &p); err != nil {
			zap.L().Error("failed to create default product", zap.String("partId", p.PartID), zap.Error(err))
		} else {
			zap.L().Info("initialized default product", zap.String("partId", p.PartID))
		}
	}
}

// VerifyOperator checks a username and password against the stored bcrypt hash
func (a *Application) VerifyOperator(ctx context.Context, username, password string) (*domain.AdminOperator, error) {
	op, err := a.repos.Operators.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(op.Status, common.ENABLED) {
		return nil, domain.NewNotFoundError("Operator not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(password)); err != nil {
		return nil, domain.NewNotFoundError("Operator not found")
	}
	now := time.Now()
	if err := a.repos.Operators.TouchLogin(ctx, op.ID, now); err != nil {
		zap.L().Warn("failed to record operator login", zap.Error(err))
	}
	op.LastLogin = now
	return op, nil
}
