package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName      string
	Environment  string
	HTTP         HTTPConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Context      ContextConfig
	Logger       LoggerConfig
	Migrations   MigrationsConfig
	Subscription SubscriptionConfig
	Listings     ListingsConfig
	Photos       PhotosConfig
	Geocoding    GeocodingConfig
	Payments     PaymentsConfig
	Admin        AdminConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	MaxBodySize   int
	EnablePprof   bool
	EnableMetrics bool
	TrustProxies  bool
}

type DatabaseConfig struct {
	// Enabled false keeps agents and the review queue in memory.
	Enabled         bool
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
	ConnectRetries  int
}

// DSN returns the explicit URL or one assembled from the discrete settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	HealthInterval  time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

type SubscriptionConfig struct {
	UnitFee             decimal.Decimal
	InitialStatus       string
	BillingPeriodMonths int
}

type ListingsConfig struct {
	SnowflakeNode int64
	// Fallback box used to place listings created without coordinates.
	FallbackNorth float64
	FallbackSouth float64
	FallbackEast  float64
	FallbackWest  float64
}

type PhotosConfig struct {
	StorePath       string
	MaxBytes        int64
	Retention       time.Duration
	CleanupSchedule string
	MaxPerListing   int
	Concurrency     int
}

type GeocodingConfig struct {
	BaseURL   string
	Language  string
	UserAgent string
	Timeout   time.Duration
}

// AdminConfig seeds a reviewer account on boot when both fields are set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type PaymentsConfig struct {
	Gateway     string
	URL         string
	Token       string
	Timeout     time.Duration
	Latency     time.Duration
	FailureRate float64
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	unitFee, err := decimal.NewFromString(getString("SUBSCRIPTION_UNIT_FEE", "5"))
	if err != nil {
		return nil, fmt.Errorf("SUBSCRIPTION_UNIT_FEE: %w", err)
	}
	if unitFee.IsNegative() {
		return nil, fmt.Errorf("SUBSCRIPTION_UNIT_FEE: %s is negative", unitFee)
	}

	cfg := &Config{
		AppName:     getString("APP_NAME", "realty"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8080"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			MaxBodySize:   getInt("SERVER_MAX_BODY_SIZE", 64*1024*1024),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", true),
			TrustProxies:  getBool("SERVER_TRUST_PROXIES", false),
		},
		Database: DatabaseConfig{
			Enabled:         getBool("DB_ENABLED", true),
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "realty"),
			User:            getString("DB_USER", "realty"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
			ConnectRetries:  getInt("DB_CONNECT_RETRIES", 5),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getString("JWT_ISSUER", "realty"),
			SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
			HealthInterval:  getDuration("HEALTH_CHECK_INTERVAL", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Subscription: SubscriptionConfig{
			UnitFee:             unitFee,
			InitialStatus:       getString("SUBSCRIPTION_INITIAL_STATUS", "INACTIVE"),
			BillingPeriodMonths: getInt("SUBSCRIPTION_BILLING_PERIOD_MONTHS", 1),
		},
		Listings: ListingsConfig{
			SnowflakeNode: int64(getInt("SNOWFLAKE_NODE", 1)),
			FallbackNorth: getFloat("FALLBACK_BBOX_NORTH", 55.9),
			FallbackSouth: getFloat("FALLBACK_BBOX_SOUTH", 55.6),
			FallbackEast:  getFloat("FALLBACK_BBOX_EAST", 37.8),
			FallbackWest:  getFloat("FALLBACK_BBOX_WEST", 37.4),
		},
		Photos: PhotosConfig{
			StorePath:       getString("PHOTO_STORE_PATH", "./data/photos.db"),
			MaxBytes:        int64(getInt("PHOTO_MAX_BYTES", 5*1024*1024)),
			Retention:       getDuration("PHOTO_RETENTION", 30*24*time.Hour),
			CleanupSchedule: getString("PHOTO_CLEANUP_SCHEDULE", "@every 1h"),
			MaxPerListing:   getInt("PHOTO_MAX_PER_LISTING", 10),
			Concurrency:     getInt("PHOTO_SAVE_CONCURRENCY", 4),
		},
		Geocoding: GeocodingConfig{
			BaseURL:   getString("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			Language:  getString("GEOCODER_LANGUAGE", "ru"),
			UserAgent: getString("GEOCODER_USER_AGENT", "realty-workspace/1.0"),
			Timeout:   getDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Payments: PaymentsConfig{
			Gateway:     getString("PAYMENT_GATEWAY", "simulated"),
			URL:         os.Getenv("PAYMENT_URL"),
			Token:       os.Getenv("PAYMENT_TOKEN"),
			Timeout:     getDuration("PAYMENT_TIMEOUT", 30*time.Second),
			Latency:     getDuration("PAYMENT_LATENCY", time.Second),
			FailureRate: getFloat("PAYMENT_FAIL", 0),
		},
		Admin: AdminConfig{
			Name:     getString("ADMIN_NAME", "Administrator"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = cfg.Database.DSN()
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
