package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/local.yml"

// maxCodeLength matches the width of the urls.short_code column.
const maxCodeLength = 16

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	Auth         `yaml:"auth"`
	Analytics    `yaml:"analytics"`
	Retention    `yaml:"retention"`
	Redis        `yaml:"redis"`
	RateLimit    `yaml:"rate_limit"`
	Log          `yaml:"log"`
}

// HTTPServer holds HTTP listener configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

// Database holds connection settings. URL takes precedence over the
// individual host fields and may use the postgres:// or sqlite:// scheme.
type Database struct {
	URL             string `yaml:"url" env:"DATABASE_URL"`
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"shortlink"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	LogQueries      bool   `yaml:"log_queries" env:"DB_LOG_QUERIES" env-default:"false"`
}

// URLShortener holds short code generation settings.
type URLShortener struct {
	CodeLength   int    `yaml:"code_length" env:"SHORT_CODE_LENGTH" env-default:"8"`
	MaxRetries   int    `yaml:"max_retries" env:"SHORT_CODE_MAX_RETRIES" env-default:"5"`
	MaxURLLength int    `yaml:"max_url_length" env:"MAX_URL_LENGTH" env-default:"2048"`
	BaseURL      string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
}

// Auth holds credential and token settings.
type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"shortlink"`
	BcryptCost     int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

// Analytics holds click processing and reporting settings.
type Analytics struct {
	WorkerCount     int           `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"500ms"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"10s"`
	DefaultDays     int           `yaml:"default_days" env:"ANALYTICS_DEFAULT_DAYS" env-default:"30"`
	TopReferrers    int           `yaml:"top_referrers" env:"ANALYTICS_TOP_REFERRERS" env-default:"10"`
	UARegexesPath   string        `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH"`
	GeoIPDBPath     string        `yaml:"geoip_db_path" env:"GEOIP_DB_PATH"`
}

// Retention holds click event retention settings. A zero SweepInterval
// disables the in-process sweeper.
type Retention struct {
	DaysToKeep    int           `yaml:"days_to_keep" env:"RETENTION_DAYS" env-default:"90"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"RETENTION_SWEEP_INTERVAL" env-default:"24h"`
}

// Redis holds the short code lookup cache settings.
type Redis struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"10m"`
}

// RateLimit holds the per client IP request limiter settings.
type RateLimit struct {
	Enabled           bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

// Log holds optional file logging settings.
type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

// Load reads the configuration from the YAML file at path, overridden by
// environment variables. When the file does not exist only the environment
// and defaults are used.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("auth.jwt_secret must be set")
	case c.URLShortener.CodeLength < 4:
		return fmt.Errorf("url_shortener.code_length must be at least 4, got %d", c.URLShortener.CodeLength)
	case c.URLShortener.CodeLength > maxCodeLength:
		return fmt.Errorf("url_shortener.code_length must be at most %d, got %d", maxCodeLength, c.URLShortener.CodeLength)
	case c.URLShortener.MaxRetries < 1:
		return fmt.Errorf("url_shortener.max_retries must be positive, got %d", c.URLShortener.MaxRetries)
	case c.Retention.DaysToKeep < 1:
		return fmt.Errorf("retention.days_to_keep must be positive, got %d", c.Retention.DaysToKeep)
	case c.Analytics.DefaultDays < 1 || c.Analytics.DefaultDays > 365:
		return fmt.Errorf("analytics.default_days must be within 1..365, got %d", c.Analytics.DefaultDays)
	}
	return nil
}
