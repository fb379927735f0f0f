package app

import (
	"context"
	"io"
	"time"

	"github.com/rapidautoparts/storefront/config"
	"github.com/rapidautoparts/storefront/internal/assets"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/matching"
	"github.com/rapidautoparts/storefront/internal/repository"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// RepositoryProvider provides the persistence layer
type RepositoryProvider interface {
	Products() repository.ProductRepository
	Reviews() repository.ReviewRepository
	CategoryImageRepo() repository.CategoryImageRepository
	Operators() repository.OperatorRepository
	AdminLogs() repository.AdminLogRepository
}

// ServiceProvider provides the domain services built on the repositories
type ServiceProvider interface {
	Uploads() *upload.Store
	CategoryImages() *assets.CategoryImages
	Matcher() *matching.Matcher
	Events() *events.Bus
}

// AuthProvider verifies operator credentials
type AuthProvider interface {
	VerifyOperator(ctx context.Context, username, password string) (*domain.AdminOperator, error)
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// MaintenanceProvider provides the bulk catalog operations
type MaintenanceProvider interface {
	PatchImages(ctx context.Context, operator string, r io.Reader) (*PatchResult, error)
	ExportCatalog(ctx context.Context, format string, w io.Writer) error
	SweepUploads(ctx context.Context, olderThan time.Duration) (int, error)
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	RepositoryProvider
	ServiceProvider
	AuthProvider
	SchedulerProvider
	MaintenanceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
