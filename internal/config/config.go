package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env           string              `yaml:"env" validate:"required"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Shifts        ShiftsConfig        `yaml:"shifts"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" validate:"required"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// RedisConfig is optional; without it notifications fall back to the log.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16"`
	// TrustHeader accepts X-Username without a token. Local development only.
	TrustHeader bool          `yaml:"trust_header"`
	TokenTTL    time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

type RateLimitConfig struct {
	Strategy string        `yaml:"strategy" validate:"oneof=fixed_window token_bucket"`
	Requests int           `yaml:"requests" validate:"gt=0"`
	Window   time.Duration `yaml:"window" validate:"gt=0"`
}

type ShiftsConfig struct {
	// StrictValidation restricts the validate transition to admins.
	StrictValidation   bool          `yaml:"strict_validation"`
	CancellationWindow time.Duration `yaml:"cancellation_window" validate:"gt=0"`
}

type NotificationsConfig struct {
	FrontendURL     string        `yaml:"frontend_url" validate:"required,url"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout" validate:"gt=0"`
	MonitorInterval time.Duration `yaml:"monitor_interval" validate:"gt=0"`
	// TrimSchedule is a five-field cron expression for stream trimming.
	TrimSchedule string `yaml:"trim_schedule" validate:"required"`
	StreamMaxLen int64  `yaml:"stream_max_len" validate:"gt=0"`
}

var validate = validator.New()

// Load reads the YAML file at path (when it exists), applies environment
// overrides and validates the result. An empty path uses SHIFTDESK_CONFIG.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SHIFTDESK_CONFIG")
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.overrideFromEnv()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct validation over the whole tree.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "shiftdesk.db",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			JWTSecret:   "shiftdesk-dev-secret-change-me",
			TrustHeader: true,
			TokenTTL:    24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Strategy: "fixed_window",
			Requests: 10,
			Window:   60 * time.Second,
		},
		Shifts: ShiftsConfig{
			CancellationWindow: 12 * time.Hour,
		},
		Notifications: NotificationsConfig{
			FrontendURL:     "http://localhost:3000",
			DispatchTimeout: 10 * time.Second,
			MonitorInterval: 30 * time.Second,
			TrimSchedule:    "0 3 * * *",
			StreamMaxLen:    10000,
		},
	}
}

func (c *Config) overrideFromEnv() {
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Env = env
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	} else if host := os.Getenv("PG_HOST"); host != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("PG_USER"), os.Getenv("PG_PASSWORD"), host, envOr("PG_PORT", "5432"), os.Getenv("PG_DB"))
	}

	if enabled, ok := envBool("REDIS_ENABLED"); ok {
		c.Redis.Enabled = enabled
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Redis.Addr = host + ":" + envOr("REDIS_PORT", "6379")
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		c.Redis.Password = pw
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if trust, ok := envBool("AUTH_TRUST_HEADER"); ok {
		c.Auth.TrustHeader = trust
	}

	if strategy := os.Getenv("RATE_LIMIT_STRATEGY"); strategy != "" {
		c.RateLimit.Strategy = strategy
	}
	if n, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS")); err == nil {
		c.RateLimit.Requests = n
	}
	if d, err := time.ParseDuration(os.Getenv("RATE_LIMIT_WINDOW")); err == nil {
		c.RateLimit.Window = d
	}

	if strict, ok := envBool("STRICT_VALIDATION"); ok {
		c.Shifts.StrictValidation = strict
	}
	if h, err := strconv.Atoi(os.Getenv("CANCEL_WINDOW_HOURS")); err == nil {
		c.Shifts.CancellationWindow = time.Duration(h) * time.Hour
	}

	if url := os.Getenv("FRONTEND_URL"); url != "" {
		c.Notifications.FrontendURL = url
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) (bool, bool) {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false, false
	}
	return v, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
