package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastygo/embeddables/domain"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	EasyPost    EasyPostConfig
	Static      StaticConfig
	Redis       RedisConfig
	Audit       AuditConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Console     ConsoleConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	AllowedOrigin string
}

// EasyPostConfig holds the upstream credential and the origin host the embeddables are served from.
type EasyPostConfig struct {
	APIKey           string
	OriginHost       string
	BaseURL          string
	Timeout          time.Duration
	PaginateChildren bool
}

type StaticConfig struct {
	Dir   string
	Index string
}

// RedisConfig enables the directory cache when URL is set.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

// AuditConfig enables the session audit log when Path is set.
type AuditConfig struct {
	Path          string
	Retention     time.Duration
	PruneInterval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// ConsoleConfig points the operator console at a running backend.
type ConsoleConfig struct {
	APIURL  string
	Timeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults. Credentials are not checked here, see Validate.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "embeddables-demo"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("PORT", getString("SERVER_PORT", "5000")),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 40*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			AllowedOrigin: getString("CORS_ALLOWED_ORIGIN", "*"),
		},
		EasyPost: EasyPostConfig{
			APIKey:           strings.TrimSpace(os.Getenv("EASYPOST_API_KEY")),
			OriginHost:       getString("ORIGIN_HOST", "localhost"),
			BaseURL:          strings.TrimRight(getString("EASYPOST_BASE_URL", "https://api.easypost.com/v2"), "/"),
			Timeout:          getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			PaginateChildren: getBool("CHILD_USERS_PAGINATE", true),
		},
		Static: StaticConfig{
			Dir:   getString("STATIC_DIR", "./public"),
			Index: getString("STATIC_INDEX", "index.html"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("DIRECTORY_CACHE_TTL", 30*time.Second),
		},
		Audit: AuditConfig{
			Path:          getString("AUDIT_PATH", "./data/audit.db"),
			Retention:     getDuration("AUDIT_RETENTION", 7*24*time.Hour),
			PruneInterval: getDuration("AUDIT_PRUNE_INTERVAL", time.Hour),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 35*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}
	cfg.Console = ConsoleConfig{
		APIURL:  strings.TrimRight(getString("CONSOLE_API_URL", "http://localhost:"+cfg.HTTP.Port), "/"),
		Timeout: getDuration("CONSOLE_TIMEOUT", 40*time.Second),
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

// Validate reports the first configuration error that makes upstream calls impossible.
func (c EasyPostConfig) Validate() error {
	if c.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	if c.OriginHost == "" {
		return domain.ErrMissingOriginHost
	}
	if !IsBareHost(c.OriginHost) {
		return domain.ErrInvalidOriginHost
	}
	return nil
}

// IsBareHost reports whether host carries no scheme, path or whitespace.
func IsBareHost(host string) bool {
	if host == "" {
		return false
	}
	if strings.Contains(host, "://") || strings.Contains(host, "/") {
		return false
	}
	return strings.IndexFunc(host, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	}) < 0
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
