package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Log          LogConfig
	Database     DatabaseConfig
	Capture      CaptureConfig
	Storage      StorageConfig
	Cart         CartConfig
	Pricing      PricingConfig
	Regeneration RegenerationConfig
	Session      SessionConfig
	Designs      DesignsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env           string
	Port          string
	PublicBaseURL string // used to build links to locally stored captures
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// DatabaseConfig holds database connection settings.
// URL wins over the individual fields when set.
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	AutoMigrate  bool
}

// CaptureConfig holds composite rendering settings
type CaptureConfig struct {
	Renderer     string // auto, chromedp, software
	ChromePath   string
	CanvasWidth  int
	CanvasHeight int
	PixelRatio   float64
	Timeout      time.Duration
}

// StorageConfig selects and configures the artifact store
type StorageConfig struct {
	Backend  string // s3, drive, local
	LocalDir string
	S3       S3Config
	Drive    DriveConfig
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // when empty, presigned URLs are returned
	UsePathStyle    bool
	PresignTTL      time.Duration
}

// DriveConfig holds Google Drive artifact settings
type DriveConfig struct {
	FolderID string
}

// CartConfig holds the cart collaborator endpoint
type CartConfig struct {
	ServiceURL string // empty logs line items instead of posting them
	Timeout    time.Duration
}

// PricingConfig holds the pricebook location
type PricingConfig struct {
	PricebookPath string
}

// RegenerationConfig holds batch regeneration settings
type RegenerationConfig struct {
	Concurrency int
	SweepCron   string // empty disables the sweep
	SweepLimit  int
}

// SessionConfig holds customization session settings
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// DesignsConfig holds design catalog settings
type DesignsConfig struct {
	DriveFolderID string
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"app.env":                      "ENV",
	"app.port":                     "PORT",
	"app.public_base_url":          "PUBLIC_BASE_URL",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
	"database.url":                 "DATABASE_URL",
	"database.host":                "DB_HOST",
	"database.port":                "DB_PORT",
	"database.user":                "DB_USER",
	"database.password":            "DB_PASSWORD",
	"database.name":                "DB_NAME",
	"database.sslmode":             "DB_SSLMODE",
	"database.max_open_conns":      "DB_MAX_OPEN_CONNS",
	"database.auto_migrate":        "DB_AUTO_MIGRATE",
	"capture.renderer":             "RENDERER",
	"capture.chrome_path":          "CHROME_PATH",
	"capture.canvas_width":         "CANVAS_WIDTH",
	"capture.canvas_height":        "CANVAS_HEIGHT",
	"capture.pixel_ratio":          "CAPTURE_PIXEL_RATIO",
	"capture.timeout":              "CAPTURE_TIMEOUT",
	"storage.backend":              "STORAGE_BACKEND",
	"storage.local_dir":            "LOCAL_STORAGE_DIR",
	"storage.s3.bucket":            "S3_BUCKET",
	"storage.s3.region":            "S3_REGION",
	"storage.s3.endpoint":          "S3_ENDPOINT",
	"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
	"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
	"storage.s3.public_base_url":   "S3_PUBLIC_BASE_URL",
	"storage.s3.use_path_style":    "S3_USE_PATH_STYLE",
	"storage.s3.presign_ttl":       "S3_PRESIGN_TTL",
	"storage.drive.folder_id":      "DRIVE_CAPTURE_FOLDER_ID",
	"cart.service_url":             "CART_SERVICE_URL",
	"cart.timeout":                 "CART_TIMEOUT",
	"pricing.pricebook_path":       "PRICEBOOK_PATH",
	"regeneration.concurrency":     "REGEN_CONCURRENCY",
	"regeneration.sweep_cron":      "REGEN_SWEEP_CRON",
	"regeneration.sweep_limit":     "REGEN_SWEEP_LIMIT",
	"session.ttl":                  "SESSION_TTL",
	"session.sweep_interval":       "SESSION_SWEEP_INTERVAL",
	"designs.drive_folder_id":      "DESIGN_DRIVE_FOLDER_ID",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("capture.renderer", "auto")
	v.SetDefault("capture.canvas_width", 500)
	v.SetDefault("capture.canvas_height", 500)
	v.SetDefault("capture.pixel_ratio", 4.0)
	v.SetDefault("capture.timeout", 60*time.Second)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "data/captures")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.presign_ttl", 7*24*time.Hour)
	v.SetDefault("cart.timeout", 15*time.Second)
	v.SetDefault("regeneration.concurrency", 2)
	v.SetDefault("regeneration.sweep_limit", 50)
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.sweep_interval", 5*time.Minute)
}

// Load reads configuration with this priority (highest first):
// 1. Environment variables (see envBindings)
// 2. config.toml in the working directory
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:           v.GetString("app.env"),
			Port:          strings.TrimPrefix(v.GetString("app.port"), ":"),
			PublicBaseURL: strings.TrimRight(v.GetString("app.public_base_url"), "/"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("database.url"),
			Host:         v.GetString("database.host"),
			Port:         v.GetInt("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			Name:         v.GetString("database.name"),
			SSLMode:      v.GetString("database.sslmode"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			AutoMigrate:  v.GetBool("database.auto_migrate"),
		},
		Capture: CaptureConfig{
			Renderer:     strings.ToLower(v.GetString("capture.renderer")),
			ChromePath:   v.GetString("capture.chrome_path"),
			CanvasWidth:  v.GetInt("capture.canvas_width"),
			CanvasHeight: v.GetInt("capture.canvas_height"),
			PixelRatio:   v.GetFloat64("capture.pixel_ratio"),
			Timeout:      v.GetDuration("capture.timeout"),
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(v.GetString("storage.backend")),
			LocalDir: v.GetString("storage.local_dir"),
			S3: S3Config{
				Bucket:          v.GetString("storage.s3.bucket"),
				Region:          v.GetString("storage.s3.region"),
				Endpoint:        v.GetString("storage.s3.endpoint"),
				AccessKeyID:     v.GetString("storage.s3.access_key_id"),
				SecretAccessKey: v.GetString("storage.s3.secret_access_key"),
				PublicBaseURL:   strings.TrimRight(v.GetString("storage.s3.public_base_url"), "/"),
				UsePathStyle:    v.GetBool("storage.s3.use_path_style"),
				PresignTTL:      v.GetDuration("storage.s3.presign_ttl"),
			},
			Drive: DriveConfig{
				FolderID: v.GetString("storage.drive.folder_id"),
			},
		},
		Cart: CartConfig{
			ServiceURL: v.GetString("cart.service_url"),
			Timeout:    v.GetDuration("cart.timeout"),
		},
		Pricing: PricingConfig{
			PricebookPath: v.GetString("pricing.pricebook_path"),
		},
		Regeneration: RegenerationConfig{
			Concurrency: v.GetInt("regeneration.concurrency"),
			SweepCron:   v.GetString("regeneration.sweep_cron"),
			SweepLimit:  v.GetInt("regeneration.sweep_limit"),
		},
		Session: SessionConfig{
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
		Designs: DesignsConfig{
			DriveFolderID: v.GetString("designs.drive_folder_id"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Configured reports whether enough settings are present to connect
func (c *DatabaseConfig) Configured() bool {
	return c.URL != "" || (c.Host != "" && c.User != "" && c.Name != "")
}

func (c *Config) validate() error {
	switch c.Capture.Renderer {
	case "auto", "chromedp", "software":
	default:
		return fmt.Errorf("invalid RENDERER %q: expected auto, chromedp or software", c.Capture.Renderer)
	}
	if c.Capture.CanvasWidth <= 0 || c.Capture.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Capture.CanvasWidth, c.Capture.CanvasHeight)
	}
	if c.Capture.PixelRatio < 1 || c.Capture.PixelRatio > 8 {
		return fmt.Errorf("CAPTURE_PIXEL_RATIO must be within [1,8], got %v", c.Capture.PixelRatio)
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR is required for the local storage backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
	case "drive":
		if c.Storage.Drive.FolderID == "" {
			return fmt.Errorf("DRIVE_CAPTURE_FOLDER_ID is required for the drive storage backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: expected s3, drive or local", c.Storage.Backend)
	}
	if c.Regeneration.Concurrency < 1 {
		return fmt.Errorf("REGEN_CONCURRENCY must be at least 1")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}
