package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabasesConfig `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Schema    SchemaConfig    `mapstructure:"schema"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Compliance DatabaseConfig `mapstructure:"compliance"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// SecurityConfig holds the identity propagation settings of the auth layer in front of the service
type SecurityConfig struct {
	UserIDHeader string `mapstructure:"user_id_header"`
}

// MailerConfig holds the hosted auth/email service configuration
type MailerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	RedirectTo string        `mapstructure:"redirect_to"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds object storage configuration for checklist evidence
type StorageConfig struct {
	Type        string        `mapstructure:"type"`
	BasePath    string        `mapstructure:"base_path"`
	MaxUploadMB int64         `mapstructure:"max_upload_mb"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	S3          S3Config      `mapstructure:"s3"`
}

// S3Config holds S3 specific settings
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// RedisConfig holds redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DashboardConfig holds dashboard configuration
type DashboardConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ScoringConfig holds response scoring configuration
type ScoringConfig struct {
	PassThreshold float64 `mapstructure:"pass_threshold"`
}

// SchemaConfig holds schema validation configuration
type SchemaConfig struct {
	StrictValidation bool `mapstructure:"strict_validation"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COMPLIANCE_MGT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("database.compliance.type", "mysql")
	v.SetDefault("database.compliance.port", 3306)
	v.SetDefault("database.compliance.max_open_conns", 25)
	v.SetDefault("database.compliance.max_idle_conns", 5)
	v.SetDefault("database.compliance.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("security.user_id_header", "X-User-ID")
	v.SetDefault("mailer.timeout", 30*time.Second)
	v.SetDefault("storage.type", "fs")
	v.SetDefault("storage.base_path", "./repository/evidence")
	v.SetDefault("storage.max_upload_mb", 10)
	v.SetDefault("storage.timeout", 30*time.Second)
	v.SetDefault("storage.max_retries", 3)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("dashboard.cache_ttl", time.Minute)
	v.SetDefault("scoring.pass_threshold", 70.0)
	v.SetDefault("schema.strict_validation", true)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Compliance.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Compliance.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Mailer.Enabled && config.Mailer.BaseURL == "" {
		return fmt.Errorf("mailer base URL is required when mailer is enabled")
	}

	switch config.Storage.Type {
	case "fs":
		if config.Storage.BasePath == "" {
			return fmt.Errorf("storage base path is required for fs storage")
		}
	case "s3":
		if config.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	if config.Scoring.PassThreshold < 0 || config.Scoring.PassThreshold > 100 {
		return fmt.Errorf("scoring pass threshold must be between 0 and 100")
	}

	if config.Security.UserIDHeader == "" {
		return fmt.Errorf("security user ID header is required")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// MaxUploadBytes returns the evidence upload limit in bytes
func (s *StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return s.MaxUploadMB << 20
}
