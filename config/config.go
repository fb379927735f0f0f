package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system settings
type SysConfig struct {
	Appid       string `yaml:"appid" json:"appid"`
	Location    string `yaml:"location" json:"location"`
	Workdir     string `yaml:"workdir" json:"workdir"`
	Debug       bool   `yaml:"debug" json:"debug"`
	SeedCatalog bool   `yaml:"seed_catalog" json:"seed_catalog"`
}

// WebConfig HTTP server settings
type WebConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	BodyMax string `yaml:"body_max" json:"body_max"` // echo BodyLimit syntax, e.g. "128M"
}

// DBConfig database settings
type DBConfig struct {
	Type     string `yaml:"type" json:"type"` // postgres | sqlite
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// LogConfig logger settings
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development | production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// AdminConfig operator credentials and token settings
type AdminConfig struct {
	Username      string        `yaml:"username" json:"username"`
	Password      string        `yaml:"password" json:"-"`
	JwtSecret     string        `yaml:"jwt_secret" json:"-"`
	SessionSecret string        `yaml:"session_secret" json:"-"`
	TokenTTL      time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

// UploadConfig upload storage settings
type UploadConfig struct {
	Dir         string   `yaml:"dir" json:"dir"`
	URLPrefix   string   `yaml:"url_prefix" json:"url_prefix"`
	CategoryDir string   `yaml:"category_dir" json:"category_dir"`
	CategoryURL string   `yaml:"category_url" json:"category_url"`
	MaxSize     int64    `yaml:"max_size" json:"max_size"` // bytes
	Extensions  []string `yaml:"extensions" json:"extensions"`
}

// MatchingConfig quote finder settings
type MatchingConfig struct {
	QuoteMode     string        `yaml:"quote_mode" json:"quote_mode"` // any | all
	YearTolerance int           `yaml:"year_tolerance" json:"year_tolerance"`
	StepDelay     time.Duration `yaml:"step_delay" json:"step_delay"`
}

// MailConfig new review notification settings
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
}

// AppConfig application configuration
type AppConfig struct {
	System   SysConfig      `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Database DBConfig       `yaml:"database" json:"database"`
	Logger   LogConfig      `yaml:"logger" json:"logger"`
	Admin    AdminConfig    `yaml:"admin" json:"admin"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	Matching MatchingConfig `yaml:"matching" json:"matching"`
	Mail     MailConfig     `yaml:"mail" json:"mail"`
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetUploadDir() string {
	if path.IsAbs(c.Upload.Dir) {
		return c.Upload.Dir
	}
	return path.Join(c.System.Workdir, c.Upload.Dir)
}

func (c *AppConfig) GetCategoryDir() string {
	if path.IsAbs(c.Upload.CategoryDir) {
		return c.Upload.CategoryDir
	}
	return path.Join(c.System.Workdir, c.Upload.CategoryDir)
}

func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{c.GetDataDir(), c.GetLogDir(), c.GetUploadDir(), c.GetCategoryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// Shipped placeholder credentials; a production deployment must override them
const (
	PlaceholderAdminPassword = "admin123"
	PlaceholderJwtSecret     = "change-me-jwt-secret"
	PlaceholderSessionSecret = "change-me-session-secret"
)

// CheckSecrets rejects empty or placeholder admin credentials unless debug mode is on
func (c *AppConfig) CheckSecrets() error {
	if c.System.Debug {
		return nil
	}
	checks := []struct {
		name, value, placeholder string
	}{
		{"admin.jwt_secret", c.Admin.JwtSecret, PlaceholderJwtSecret},
		{"admin.session_secret", c.Admin.SessionSecret, PlaceholderSessionSecret},
		{"admin.password", c.Admin.Password, PlaceholderAdminPassword},
	}
	for _, chk := range checks {
		v := strings.TrimSpace(chk.value)
		if v == "" || v == chk.placeholder {
			return fmt.Errorf("%s is empty or still the shipped placeholder; set it in the config file or environment", chk.name)
		}
	}
	return nil
}

// DefaultAppConfig returns the built-in defaults
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "storefront",
			Location: "Local",
			Workdir:  "/var/storefront",
		},
		Web: WebConfig{
			Host:    "0.0.0.0",
			Port:    5000,
			BodyMax: "128M",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "storefront",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  100,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/storefront/logs/storefront.log",
		},
		Admin: AdminConfig{
			Username:      "admin",
			Password:      PlaceholderAdminPassword,
			JwtSecret:     PlaceholderJwtSecret,
			SessionSecret: PlaceholderSessionSecret,
			TokenTTL:      12 * time.Hour,
		},
		Upload: UploadConfig{
			Dir:         "uploads",
			URLPrefix:   "/uploads",
			CategoryDir: "images",
			CategoryURL: "/images",
			MaxSize:     50 * 1024 * 1024,
			Extensions:  []string{"jpeg", "jpg", "png", "webp", "mp4", "mov", "avi"},
		},
		Matching: MatchingConfig{
			QuoteMode:     "any",
			YearTolerance: 3,
		},
		Mail: MailConfig{
			Port: 587,
		},
	}
}

// LoadConfig reads the YAML file over the defaults and applies environment overrides.
// An empty file name only applies defaults and environment.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfile, err)
		}
	}
	applyEnv(cfg, os.Getenv)
	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	cfg.Matching.QuoteMode = strings.ToLower(strings.TrimSpace(cfg.Matching.QuoteMode))
	return cfg, nil
}

func applyEnv(cfg *AppConfig, getenv func(string) string) {
	setString(getenv, "STOREFRONT_WORKDIR", &cfg.System.Workdir)
	setString(getenv, "STOREFRONT_LOCATION", &cfg.System.Location)
	setBool(getenv, "STOREFRONT_DEBUG", &cfg.System.Debug)
	setBool(getenv, "STOREFRONT_SEED_CATALOG", &cfg.System.SeedCatalog)

	setString(getenv, "STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setInt(getenv, "STOREFRONT_WEB_PORT", &cfg.Web.Port)

	setString(getenv, "STOREFRONT_DB_TYPE", &cfg.Database.Type)
	setString(getenv, "STOREFRONT_DB_HOST", &cfg.Database.Host)
	setInt(getenv, "STOREFRONT_DB_PORT", &cfg.Database.Port)
	setString(getenv, "STOREFRONT_DB_NAME", &cfg.Database.Name)
	setString(getenv, "STOREFRONT_DB_USER", &cfg.Database.User)
	setString(getenv, "STOREFRONT_DB_PWD", &cfg.Database.Passwd)
	setBool(getenv, "STOREFRONT_DB_DEBUG", &cfg.Database.Debug)

	setString(getenv, "STOREFRONT_LOGGER_MODE", &cfg.Logger.Mode)
	setBool(getenv, "STOREFRONT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setString(getenv, "STOREFRONT_ADMIN_USERNAME", &cfg.Admin.Username)
	setString(getenv, "STOREFRONT_ADMIN_PASSWORD", &cfg.Admin.Password)
	setString(getenv, "STOREFRONT_JWT_SECRET", &cfg.Admin.JwtSecret)
	setString(getenv, "STOREFRONT_SESSION_SECRET", &cfg.Admin.SessionSecret)
	if v := getenv("STOREFRONT_TOKEN_TTL"); v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			cfg.Admin.TokenTTL = d
		}
	}

	if v := getenv("STOREFRONT_UPLOAD_MAX_SIZE"); v != "" {
		if n, err := cast.ToInt64E(v); err == nil && n > 0 {
			cfg.Upload.MaxSize = n
		}
	}
	setString(getenv, "STOREFRONT_QUOTE_MODE", &cfg.Matching.QuoteMode)

	setBool(getenv, "STOREFRONT_MAIL_ENABLED", &cfg.Mail.Enabled)
	setString(getenv, "STOREFRONT_MAIL_HOST", &cfg.Mail.Host)
	setInt(getenv, "STOREFRONT_MAIL_PORT", &cfg.Mail.Port)
	setString(getenv, "STOREFRONT_MAIL_USER", &cfg.Mail.User)
	setString(getenv, "STOREFRONT_MAIL_PASSWORD", &cfg.Mail.Password)
	setString(getenv, "STOREFRONT_MAIL_TO", &cfg.Mail.To)
}

func setString(getenv func(string) string, name string, val *string) {
	if v := getenv(name); v != "" {
		*val = v
	}
}

func setInt(getenv func(string) string, name string, val *int) {
	if v := getenv(name); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			*val = n
		}
	}
}

func setBool(getenv func(string) string, name string, val *bool) {
	if v := getenv(name); v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*val = b
		}
	}
}
