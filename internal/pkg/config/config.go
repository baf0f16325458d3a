package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/env"
)

// Store drivers.
const (
	StoreFirestore = "firestore"
	StoreMySQL     = "mysql"
	StoreMemory    = "memory"
)

// PayPal environments.
const (
	PayPalSandbox = "sandbox"
	PayPalLive    = "live"
)

// Config is the complete process configuration, loaded once at start.
type Config struct {
	Host           string
	Port           string        `validate:"required,numeric"`
	RequestTimeout time.Duration `validate:"gt=0"`
	CORSOrigins    []string
	AppBaseURL     string `validate:"omitempty,url"`

	Firebase FirebaseConfig
	Store    StoreConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Chat     ChatConfig
	PayPal   PayPalConfig
	Metrics  MetricsConfig
}

type FirebaseConfig struct {
	ServiceAccountJSON string `validate:"required,json"`
	ProjectID          string
}

type StoreConfig struct {
	Driver string `validate:"oneof=firestore mysql memory"`
}

type DatabaseConfig struct {
	Host     string
	Port     string `validate:"omitempty,numeric"`
	User     string
	Password string
	Name     string
}

type CacheConfig struct {
	Host     string
	Port     string `validate:"omitempty,numeric"`
	Password string
	// DedupTTL bounds how long applied webhook event ids are remembered.
	DedupTTL time.Duration `validate:"gte=0"`
}

// Enabled reports whether a Redis host was configured.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type ChatConfig struct {
	APIKey       string
	BaseURL      string `validate:"required,url"`
	DefaultModel string `validate:"required"`
	Temperature  float64
	// RateLimitMax is the number of chat requests per user per minute; 0
	// disables the limiter.
	RateLimitMax int `validate:"gte=0"`
}

type PayPalConfig struct {
	Env             string `validate:"oneof=sandbox live"`
	BaseURL         string `validate:"omitempty,url"`
	ClientID        string `validate:"required"`
	ClientSecret    string `validate:"required"`
	WebhookID       string `validate:"required"`
	PlanIDPro       string
	PlanIDPlus      string
	BrandName       string
	Locale          string
	StampMissingIDs bool
}

// APIBaseURL returns the override when set, otherwise the sandbox or live
// API host.
func (c PayPalConfig) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Env == PayPalSandbox {
		return "https://api-m.sandbox.paypal.com"
	}
	return "https://api-m.paypal.com"
}

type MetricsConfig struct {
	User     string
	Password string `validate:"required_with=User"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Host:           env.GetEnv("HOST", ""),
		Port:           env.GetEnv("PORT", "8080"),
		RequestTimeout: time.Duration(env.GetEnvInt("REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,
		CORSOrigins:    ParseOrigins(env.GetEnv("CORS_ORIGIN", "")),
		AppBaseURL:     strings.TrimRight(strings.TrimSpace(env.GetEnv("APP_BASE_URL", "")), "/"),
		Firebase: FirebaseConfig{
			ServiceAccountJSON: env.GetEnv("FIREBASE_SERVICE_ACCOUNT", ""),
			ProjectID:          env.GetEnv("FIREBASE_PROJECT_ID", ""),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(env.GetEnv("STORE_DRIVER", StoreFirestore)),
		},
		Database: LoadDatabase(),
		Cache: CacheConfig{
			Host:     env.GetEnv("CACHE_HOST", ""),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			DedupTTL: time.Duration(env.GetEnvInt("WEBHOOK_DEDUP_TTL_HOURS", 72)) * time.Hour,
		},
		Chat: ChatConfig{
			APIKey:       env.GetEnv("OPENAI_API_KEY", ""),
			BaseURL:      strings.TrimRight(env.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
			DefaultModel: env.GetEnv("CHAT_DEFAULT_MODEL", "gpt-4o-mini"),
			Temperature:  0.3,
			RateLimitMax: env.GetEnvInt("CHAT_RATE_LIMIT_MAX", 30),
		},
		PayPal: PayPalConfig{
			Env:             strings.ToLower(env.GetEnv("PAYPAL_ENV", PayPalLive)),
			BaseURL:         env.GetEnv("PAYPAL_BASE_URL", ""),
			ClientID:        env.GetEnv("PAYPAL_CLIENT_ID", ""),
			ClientSecret:    env.GetEnv("PAYPAL_CLIENT_SECRET", ""),
			WebhookID:       env.GetEnv("PAYPAL_WEBHOOK_ID", ""),
			PlanIDPro:       env.GetEnv("PAYPAL_PLAN_ID_PRO", ""),
			PlanIDPlus:      env.GetEnv("PAYPAL_PLAN_ID_PLUS", ""),
			BrandName:       env.GetEnv("PAYPAL_BRAND_NAME", "ContApp Peru"),
			Locale:          env.GetEnv("PAYPAL_LOCALE", "es-PE"),
			StampMissingIDs: env.GetEnvBool("PAYPAL_STAMP_MISSING_IDS", false),
		},
		Metrics: MetricsConfig{
			User:     env.GetEnv("METRICS_USER", ""),
			Password: env.GetEnv("METRICS_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the DB_* variables, for tools that need nothing
// else.
func LoadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:     env.GetEnv("DB_PORT", "3306"),
		User:     env.GetEnv("DB_USER", ""),
		Password: env.GetEnv("DB_PASSWORD", ""),
		Name:     env.GetEnv("DB_NAME", ""),
	}
}

// Validate checks field rules and the cross-field requirements of the
// selected store driver.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Store.Driver == StoreMySQL && (c.Database.User == "" || c.Database.Name == "") {
		return fmt.Errorf("invalid configuration: DB_USER and DB_NAME are required for STORE_DRIVER=%s", StoreMySQL)
	}
	return nil
}

// ListenAddr is the address passed to fiber.App.Listen.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ParseOrigins splits a comma-separated CORS origin list. An empty list means
// any origin.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, item := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(item); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// AllowOrigins renders the origin list the way fiber's cors middleware
// expects it.
func (c *Config) AllowOrigins() string {
	if len(c.CORSOrigins) == 0 {
		return "*"
	}
	return strings.Join(c.CORSOrigins, ",")
}
