package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/richat-partners/staffing-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Media      MediaConfig
	Storage    StorageConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	Events     EventsConfig
	Jobs       JobsConfig
	ApiKey     ApiKeyConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Security   SecurityConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// MediaConfig locates generated artifacts on disk and on the web
type MediaConfig struct {
	// Root is the MEDIA_ROOT directory used by local storage
	Root string
	// URL is the public prefix under which media files are served
	URL string
	// WriteSidecar enables the JSON metadata file next to each standardized CV
	WriteSidecar bool
}

type StorageConfig struct {
	// Mode is one of "local", "azure" or "minio"
	Mode                  string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
	MinIO                 MinIOConfig
}

// MinIOConfig holds S3-compatible object storage settings
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Location        string
	UseSSL          bool
}

// ExtractionConfig configures CV text extraction back-ends
type ExtractionConfig struct {
	// TikaURL is the base URL of the Apache Tika server used for OCR and legacy DOC files.
	// Empty disables both.
	TikaURL      string
	OCREnabled   bool
	OCRLanguages string
	OCRDPI       int
	// MinPageChars is the native text length under which a PDF page is sent to OCR
	MinPageChars int
	// Timeout bounds a single call to the extraction server (seconds)
	Timeout int
}

// CacheConfig selects the score cache back-end
type CacheConfig struct {
	// Mode is "memory" or "redis"
	Mode     string
	RedisURL string
	// TTL applies to redis entries only (seconds, 0 means no expiry)
	TTL int
}

// EventsConfig configures notification event publishing
type EventsConfig struct {
	Enabled    bool
	AMQPURL    string
	Exchange   string
	RoutingKey string
}

// JobsConfig configures scheduled background jobs
type JobsConfig struct {
	MatchRefreshEnabled bool
	MatchRefreshCron    string
	MatchRefreshTimeout int
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// SecurityConfig holds HTTP security header configuration
type SecurityConfig struct {
	ContentTypeNosniff    bool
	FrameOptions          string
	ReferrerPolicy        string
	ContentSecurityPolicy string
	EnableHSTS            bool
	HSTSMaxAge            int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the extraction server timeout as duration
func (e *ExtractionConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

// TTLDuration returns the cache entry TTL as duration
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// MatchRefreshTimeoutDuration bounds one run of the match refresh job
func (j *JobsConfig) MatchRefreshTimeoutDuration() time.Duration {
	return time.Duration(j.MatchRefreshTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}

	// MEDIA_ROOT is the conventional name used by deployments
	if mediaRoot := v.GetString("MEDIA_ROOT"); mediaRoot != "" {
		cfg.Media.Root = mediaRoot
	}
	if mediaURL := v.GetString("MEDIA_URL"); mediaURL != "" {
		cfg.Media.URL = mediaURL
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Key Vault is used when USE_AZURE_KEY_VAULT=true and the environment is staging or production;
// otherwise secrets come from environment variables.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource resolves a named secret with an environment override
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// applySecrets copies every resolvable secret into cfg.
// Missing secrets keep the value already loaded from file or environment.
func applySecrets(ctx context.Context, cfg *Config, src SecretSource) error {
	targets := []struct {
		secret string
		env    string
		dst    *string
	}{
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"admin-api-key", "ADMIN_API_KEY", &cfg.ApiKey.Value},
		{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
		{"minio-secret-access-key", "STORAGE_MINIO_SECRETACCESSKEY", &cfg.Storage.MinIO.SecretAccessKey},
		{"redis-url", "CACHE_REDISURL", &cfg.Cache.RedisURL},
		{"amqp-url", "EVENTS_AMQPURL", &cfg.Events.AMQPURL},
	}

	for _, t := range targets {
		value, err := src.GetSecretOrEnv(ctx, t.secret, t.env)
		if err == nil && value != "" {
			*t.dst = value
		}
	}

	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}

	return nil
}

// Validate checks cross-field constraints that defaults cannot express
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case "local", "azure", "cloud", "minio":
	default:
		return fmt.Errorf("unsupported storage mode: %s", c.Storage.Mode)
	}
	switch c.Cache.Mode {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache mode: %s", c.Cache.Mode)
	}
	if c.Cache.Mode == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redisUrl is required when cache.mode=redis")
	}
	if c.Events.Enabled && c.Events.AMQPURL == "" {
		return fmt.Errorf("events.amqpUrl is required when events are enabled")
	}
	if c.Extraction.MinPageChars < 0 {
		return fmt.Errorf("extraction.minPageChars must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Richat Staffing API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "richat")
	v.SetDefault("database.user", "richat_user")
	v.SetDefault("database.password", "richat_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Media defaults
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.url", "/media")
	v.SetDefault("media.writeSidecar", true)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.cloudContainer", "media")
	v.SetDefault("storage.maxUploadSizeMB", 20)
	v.SetDefault("storage.cloudConnectionString", "")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.accessKeyID", "")
	v.SetDefault("storage.minio.secretAccessKey", "")
	v.SetDefault("storage.minio.bucket", "richat-media")
	v.SetDefault("storage.minio.location", "")
	v.SetDefault("storage.minio.useSSL", false)

	// Extraction defaults
	v.SetDefault("extraction.tikaUrl", "")
	v.SetDefault("extraction.ocrEnabled", true)
	v.SetDefault("extraction.ocrLanguages", "fra+eng")
	v.SetDefault("extraction.ocrDpi", 300)
	v.SetDefault("extraction.minPageChars", 10)
	v.SetDefault("extraction.timeout", 120)

	// Cache defaults
	v.SetDefault("cache.mode", "memory")
	v.SetDefault("cache.redisUrl", "")
	v.SetDefault("cache.ttl", 0)

	// Events defaults
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.amqpUrl", "")
	v.SetDefault("events.exchange", "richat.notifications")
	v.SetDefault("events.routingKey", "notification.created")

	// Jobs defaults
	v.SetDefault("jobs.matchRefreshEnabled", false)
	v.SetDefault("jobs.matchRefreshCron", "0 0 3 * * *") // 03:00 every day
	v.SetDefault("jobs.matchRefreshTimeout", 1800)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 300) // batch matching and OCR run inside the request
	v.SetDefault("server.requestTimeout", 300)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db"})

	// Security header defaults
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.contentSecurityPolicy", "default-src 'none'; frame-ancestors 'none'")
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
}
