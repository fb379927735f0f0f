package app

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/rapidautoparts/storefront/config"
	"github.com/rapidautoparts/storefront/internal/assets"
	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/rapidautoparts/storefront/internal/events"
	"github.com/rapidautoparts/storefront/internal/matching"
	"github.com/rapidautoparts/storefront/internal/repository"
	"github.com/rapidautoparts/storefront/internal/upload"
	"github.com/rapidautoparts/storefront/pkg/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	repos     *repository.Repositories
	uploads   *upload.Store
	assets    *assets.CategoryImages
	matcher   *matching.Matcher
	bus       *events.Bus
	notifier  *Notifier
}

// Ensure Application implements all interfaces
var (
	_ DBProvider          = (*Application)(nil)
	_ ConfigProvider      = (*Application)(nil)
	_ RepositoryProvider  = (*Application)(nil)
	_ ServiceProvider     = (*Application)(nil)
	_ AuthProvider        = (*Application)(nil)
	_ SchedulerProvider   = (*Application)(nil)
	_ MaintenanceProvider = (*Application)(nil)
	_ AppContext          = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg
	if err := cfg.CheckSecrets(); err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := cfg.InitDirs(); err != nil {
		return err
	}
	if err := initLogger(cfg.Logger); err != nil {
		return err
	}
	if cfg.System.Debug {
		zap.S().Warn("debug mode: placeholder admin credentials are accepted")
	}

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB, err = getDatabase(cfg.Database, cfg.GetDataDir())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.Setup()
	a.Bootstrap()
	a.initJob()
	return nil
}

// Setup wires repositories, services and event subscribers onto the current database handle
func (a *Application) Setup() {
	cfg := a.appConfig
	a.repos = repository.NewRepositories(a.gormDB)
	a.uploads = upload.NewStore(cfg.GetUploadDir(), cfg.Upload.URLPrefix, cfg.Upload.MaxSize, cfg.Upload.Extensions)
	a.assets = assets.NewCategoryImages(a.repos.CategoryImages, a.uploads, cfg.GetCategoryDir(), cfg.Upload.CategoryURL)
	a.matcher = matching.NewMatcher(matching.Mode(cfg.Matching.QuoteMode), cfg.Matching.YearTolerance)
	a.bus = events.NewBus()
	if cfg.Mail.Enabled {
		a.notifier = NewNotifier(cfg.Mail)
	}
	a.subscribe()
}

// Bootstrap seeds the admin operator and, when enabled, the demo catalog
func (a *Application) Bootstrap() {
	a.checkSuper()
	if a.appConfig.System.SeedCatalog {
		a.checkProducts()
	}
}

func initLogger(cfg config.LogConfig) error {
	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return err
		}
	}

	zap.ReplaceGlobals(logger)
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb drops and recreates every table
func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

func (a *Application) Products() repository.ProductRepository {
	return a.repos.Products
}

func (a *Application) Reviews() repository.ReviewRepository {
	return a.repos.Reviews
}

func (a *Application) CategoryImageRepo() repository.CategoryImageRepository {
	return a.repos.CategoryImages
}

func (a *Application) Operators() repository.OperatorRepository {
	return a.repos.Operators
}

func (a *Application) AdminLogs() repository.AdminLogRepository {
	return a.repos.AdminLogs
}

func (a *Application) Uploads() *upload.Store {
	return a.uploads
}

func (a *Application) CategoryImages() *assets.CategoryImages {
	return a.assets
}

func (a *Application) Matcher() *matching.Matcher {
	return a.matcher
}

func (a *Application) Events() *events.Bus {
	return a.bus
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		ctx := a.sched.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
		}
	}
	if a.bus != nil {
		a.bus.Wait()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}

// SweepUploads removes uploaded files no product or review references any more
func (a *Application) SweepUploads(ctx context.Context, olderThan time.Duration) (int, error) {
	referenced, err := a.repos.Products.ImageURLs(ctx)
	if err != nil {
		return 0, err
	}
	media, err := a.repos.Reviews.MediaURLs(ctx)
	if err != nil {
		return 0, err
	}
	return a.uploads.Sweep(ctx, append(referenced, media...), olderThan)
}
