package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Media    MediaConfig    `mapstructure:"media"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Host         string        `mapstructure:"host" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StoreConfig holds the JSON document store configuration
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MediaConfig holds static media serving configuration
type MediaConfig struct {
	FilesDir string `mapstructure:"files_dir" validate:"required"`
	// VideosDir is a secondary lookup directory, typically a synced
	// video-assets folder living outside the repo checkout.
	VideosDir string `mapstructure:"videos_dir" validate:"required"`
	// VideosSubdir is a lower-resolution subfolder of VideosDir checked last.
	VideosSubdir string `mapstructure:"videos_subdir"`
	// PublicBaseURL is the externally visible base used for presigned-URL
	// stand-ins, e.g. http://localhost:3001.
	PublicBaseURL string `mapstructure:"public_base_url" validate:"required,url"`
}

// AuthConfig holds magic-link issuance configuration
type AuthConfig struct {
	// Secret signs magic-link tokens. The default is only suitable for
	// local development.
	Secret      string        `mapstructure:"secret" validate:"required"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" validate:"required"`
	CallbackURL string        `mapstructure:"callback_url" validate:"required,url"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"required"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins" validate:"required"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests" validate:"gte=1"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from the environment and defaults
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "regain-api")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Server defaults: the web app expects the API on port 3001
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Store defaults
	viper.SetDefault("store.path", "db.json")

	// Media defaults
	viper.SetDefault("media.files_dir", "files")
	viper.SetDefault("media.videos_dir", "videos")
	viper.SetDefault("media.videos_subdir", "720p")
	viper.SetDefault("media.public_base_url", "http://localhost:3001")

	// Auth defaults: local-dev magic-link issuance only
	viper.SetDefault("auth.secret", "local-dev-secret")
	viper.SetDefault("auth.token_ttl", "180s")
	viper.SetDefault("auth.callback_url", "http://localhost:3000/auth/callback")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output", "stdout")

	// Security defaults
	viper.SetDefault("security.cors_allowed_origins", "http://localhost:3000")
	viper.SetDefault("security.rate_limit_requests", 100)
	viper.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("app.debug", "APP_DEBUG")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Store
	viper.BindEnv("store.path", "STORE_PATH")

	// Media
	viper.BindEnv("media.files_dir", "MEDIA_FILES_DIR")
	viper.BindEnv("media.videos_dir", "MEDIA_VIDEOS_DIR")
	viper.BindEnv("media.videos_subdir", "MEDIA_VIDEOS_SUBDIR")
	viper.BindEnv("media.public_base_url", "MEDIA_PUBLIC_BASE_URL")

	// Auth
	viper.BindEnv("auth.secret", "AUTH_SECRET")
	viper.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")
	viper.BindEnv("auth.callback_url", "AUTH_CALLBACK_URL")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")

	// Security
	viper.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	viper.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	viper.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

// GetAddr returns the listen address
func (cfg *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
