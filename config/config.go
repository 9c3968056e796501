// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML configuration file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	// DefaultMaxTurns bounds the model round-trips spent on one query.
	DefaultMaxTurns = 5
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE" yaml:"auto_migrate"`
}

// URL returns a postgres:// connection URL suitable for pgxpool and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
		c.maxConns(),
	)
}

func (c *DatabaseConfig) maxConns() int {
	if c.MaxConnections <= 0 {
		return 10
	}
	return c.MaxConnections
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// LLMConfig configures the Gemini models used by the assistant, the
// shopping-list pass, the web search tool and receipt OCR.
type LLMConfig struct {
	APIKey         string  `mapstructure:"API_KEY" yaml:"api_key"`
	BaseURL        string  `mapstructure:"BASE_URL" yaml:"base_url"`
	ChatModel      string  `mapstructure:"CHAT_MODEL" yaml:"chat_model"`
	ShoppingModel  string  `mapstructure:"SHOPPING_MODEL" yaml:"shopping_model"`
	SearchModel    string  `mapstructure:"SEARCH_MODEL" yaml:"search_model"`
	OCRModel       string  `mapstructure:"OCR_MODEL" yaml:"ocr_model"`
	TimeoutSeconds int     `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	MaxTurns       int     `mapstructure:"MAX_TURNS" yaml:"max_turns"`
	Temperature    float64 `mapstructure:"TEMPERATURE" yaml:"temperature"`
}

// Timeout returns the HTTP timeout for model requests.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WalletConfig holds the Google Wallet issuer settings used to sign save links.
type WalletConfig struct {
	IssuerID           string   `mapstructure:"ISSUER_ID" yaml:"issuer_id"`
	ServiceAccountFile string   `mapstructure:"SERVICE_ACCOUNT_FILE" yaml:"service_account_file"`
	Origins            []string `mapstructure:"ORIGINS" yaml:"origins"`
	LogoURI            string   `mapstructure:"LOGO_URI" yaml:"logo_uri"`
}

// Enabled reports whether enough settings are present to sign wallet links.
func (c *WalletConfig) Enabled() bool {
	return c.IssuerID != "" && c.ServiceAccountFile != ""
}

// StorageConfig points at an S3-compatible bucket for receipt images and
// insight workbooks. Endpoint is only needed for non-AWS providers.
type StorageConfig struct {
	Enabled            bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Bucket             string `mapstructure:"BUCKET" yaml:"bucket"`
	Region             string `mapstructure:"REGION" yaml:"region"`
	Endpoint           string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID        string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey    string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	PresignTTLMinutes  int    `mapstructure:"PRESIGN_TTL_MINUTES" yaml:"presign_ttl_minutes"`
	ForcePathStyleURLs bool   `mapstructure:"FORCE_PATH_STYLE" yaml:"force_path_style"`
}

// CacheConfig controls the Redis read-through cache in front of receipt range fetches.
type CacheConfig struct {
	Enabled    bool `mapstructure:"ENABLED" yaml:"enabled"`
	TTLSeconds int  `mapstructure:"TTL_SECONDS" yaml:"ttl_seconds"`
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum assistant queries per client IP within one window
	QueryRequestsPerMinute int `mapstructure:"QUERY_REQUESTS_PER_MINUTE" yaml:"query_requests_per_minute"`
	WindowSeconds          int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	LLM       LLMConfig       `mapstructure:"LLM" yaml:"llm"`
	Wallet    WalletConfig    `mapstructure:"WALLET" yaml:"wallet"`
	Storage   StorageConfig   `mapstructure:"STORAGE" yaml:"storage"`
	Cache     CacheConfig     `mapstructure:"CACHE" yaml:"cache"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "raseed_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.AUTO_MIGRATE", true)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("LLM.BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("LLM.CHAT_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM.SHOPPING_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM.SEARCH_MODEL", "gemini-2.0-flash-001")
	v.SetDefault("LLM.OCR_MODEL", "gemini-2.5-pro")
	v.SetDefault("LLM.TIMEOUT_SECONDS", 60)
	v.SetDefault("LLM.MAX_TURNS", DefaultMaxTurns)
	v.SetDefault("LLM.TEMPERATURE", 0.0)
	v.SetDefault("WALLET.ORIGINS", []string{"www.example.com"})
	v.SetDefault("WALLET.LOGO_URI", "https://storage.googleapis.com/wallet-lab-tools-codelab-artifacts-public/pass_google_logo.jpg")
	v.SetDefault("STORAGE.ENABLED", false)
	v.SetDefault("STORAGE.REGION", "us-east-1")
	v.SetDefault("STORAGE.PRESIGN_TTL_MINUTES", 15)
	v.SetDefault("CACHE.ENABLED", true)
	v.SetDefault("CACHE.TTL_SECONDS", 120)
	v.SetDefault("RATE_LIMIT.QUERY_REQUESTS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "SERVER_VERSION"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	// Database config
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
	{"DATABASE.AUTO_MIGRATE", "DB_AUTO_MIGRATE"},
	// Redis config
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	// LLM config
	{"LLM.API_KEY", "GEMINI_API_KEY"},
	{"LLM.BASE_URL", "GEMINI_BASE_URL"},
	{"LLM.CHAT_MODEL", "GEMINI_CHAT_MODEL"},
	{"LLM.SHOPPING_MODEL", "GEMINI_SHOPPING_MODEL"},
	{"LLM.SEARCH_MODEL", "GEMINI_SEARCH_MODEL"},
	{"LLM.OCR_MODEL", "GEMINI_OCR_MODEL"},
	{"LLM.TIMEOUT_SECONDS", "LLM_TIMEOUT_SECONDS"},
	{"LLM.MAX_TURNS", "LLM_MAX_TURNS"},
	{"LLM.TEMPERATURE", "LLM_TEMPERATURE"},
	// Wallet config
	{"WALLET.ISSUER_ID", "WALLET_ISSUER_ID"},
	{"WALLET.SERVICE_ACCOUNT_FILE", "WALLET_SERVICE_ACCOUNT_FILE"},
	{"WALLET.ORIGINS", "WALLET_ORIGINS"},
	{"WALLET.LOGO_URI", "WALLET_LOGO_URI"},
	// Object storage
	{"STORAGE.ENABLED", "STORAGE_ENABLED"},
	{"STORAGE.BUCKET", "STORAGE_BUCKET"},
	{"STORAGE.REGION", "STORAGE_REGION"},
	{"STORAGE.ENDPOINT", "STORAGE_ENDPOINT"},
	{"STORAGE.ACCESS_KEY_ID", "STORAGE_ACCESS_KEY_ID"},
	{"STORAGE.SECRET_ACCESS_KEY", "STORAGE_SECRET_ACCESS_KEY"},
	{"STORAGE.PRESIGN_TTL_MINUTES", "STORAGE_PRESIGN_TTL_MINUTES"},
	{"STORAGE.FORCE_PATH_STYLE", "STORAGE_FORCE_PATH_STYLE"},
	// Cache config
	{"CACHE.ENABLED", "CACHE_ENABLED"},
	{"CACHE.TTL_SECONDS", "CACHE_TTL_SECONDS"},
	// Rate limit config
	{"RATE_LIMIT.QUERY_REQUESTS_PER_MINUTE", "RATE_LIMIT_QUERY_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
}

// LoadConfig loads configuration using Viper: defaults, then an optional YAML
// file named by CONFIG_FILE, then environment variables. The result is validated.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Infow("Loaded configuration file", "file", file)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"db_host", cfg.Database.Host,
		"chat_model", cfg.LLM.ChatModel,
		"gemini_api_key", logger.MaskSensitiveString(cfg.LLM.APIKey, 4, 2),
		"wallet_enabled", cfg.Wallet.Enabled(),
		"storage_enabled", cfg.Storage.Enabled,
		"cache_enabled", cfg.Cache.Enabled,
	)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.Environment != EnvDevelopment && cfg.Server.Environment != EnvProduction {
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validateLLMConfig(&cfg.LLM, cfg.IsProduction(), log); err != nil {
		return err
	}

	if cfg.Wallet.IssuerID != "" && cfg.Wallet.ServiceAccountFile == "" {
		return fmt.Errorf("wallet service account file is required when an issuer id is set")
	}
	if !cfg.Wallet.Enabled() {
		log.Warn("Wallet issuer not configured, shopping-list and receipt passes will have no save link")
	}

	if cfg.Storage.Enabled {
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required when storage is enabled")
		}
		if cfg.Storage.PresignTTLMinutes <= 0 {
			return fmt.Errorf("storage presign TTL must be positive")
		}
		if cfg.Storage.Endpoint != "" {
			if _, err := url.ParseRequestURI(cfg.Storage.Endpoint); err != nil {
				return fmt.Errorf("invalid storage endpoint: %w", err)
			}
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive when the cache is enabled")
	}

	if cfg.RateLimit.QueryRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit query requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}
	return nil
}

func validateLLMConfig(cfg *LLMConfig, production bool, log *zap.SugaredLogger) error {
	if cfg.APIKey == "" {
		if production {
			return fmt.Errorf("gemini API key is required")
		}
		log.Warn("Gemini API key is not set, model calls will fail")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid gemini base URL: %w", err)
	}
	if cfg.ChatModel == "" {
		return fmt.Errorf("chat model is required")
	}
	if cfg.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive")
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2]")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
