package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Hunyuan 3D (Tencent Cloud)
	HunyuanSecretID     string
	HunyuanSecretKey    string
	HunyuanEndpoint     string
	HunyuanRegion       string
	HunyuanGenerateType string

	// PayPal
	PayPalClientID     string
	PayPalClientSecret string
	PayPalMode         string
	PayPalBaseURL      string
	PayPalBrandName    string
	PayPalCurrency     string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Assets
	AssetBackend    string // "supabase" or "s3"
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	UploadMaxBytes  int64

	// Database
	DatabaseDriver string // "postgres", "mysql" or "sqlite"
	DatabaseURL    string

	// Redis (optional; enables cross-instance locks and rate limits)
	RedisAddr     string
	RedisPassword string

	// Operator notifications
	TelegramBotToken       string
	TelegramOperatorChatID int64
	NotificationsTable     string

	// Rate limiting of status polling
	StatusPollsPerMinute int

	// Outbound HTTP timeout for provider calls
	ProviderTimeout time.Duration

	// Logging
	LogLevel  string
	LogPretty bool

	// Server
	Port               string
	Environment        string
	BaseURL            string
	CORSAllowedOrigins []string
}

// Load reads the configuration from the environment, after loading an optional
// .env file. Provider credentials are checked later by ValidateProviders, once
// system_config overrides have been applied.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		HunyuanSecretID:     getEnv("HUNYUAN_SECRET_ID", ""),
		HunyuanSecretKey:    getEnv("HUNYUAN_SECRET_KEY", ""),
		HunyuanEndpoint:     getEnv("HUNYUAN_ENDPOINT", "https://ai3d.tencentcloudapi.com"),
		HunyuanRegion:       getEnv("HUNYUAN_REGION", "ap-guangzhou"),
		HunyuanGenerateType: getEnv("HUNYUAN_GENERATE_TYPE", "Normal"),

		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		PayPalMode:         strings.ToLower(getEnv("PAYPAL_MODE", "sandbox")),
		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", ""),
		PayPalBrandName:    getEnv("PAYPAL_BRAND_NAME", "Pet3D Studio"),
		PayPalCurrency:     strings.ToUpper(getEnv("PAYPAL_CURRENCY", "USD")),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "pet3d-assets"),

		AssetBackend:    strings.ToLower(getEnv("ASSET_BACKEND", "supabase")),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		UploadMaxBytes:  int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TelegramBotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramOperatorChatID: getInt64("TELEGRAM_OPERATOR_CHAT_ID", 0),
		NotificationsTable:     getEnv("NOTIFICATIONS_TABLE", ""),

		StatusPollsPerMinute: getInt("STATUS_POLLS_PER_MINUTE", 30),
		ProviderTimeout:      getDuration("PROVIDER_TIMEOUT", 60*time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getBool("LOG_PRETTY", false),

		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres, mysql or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.AssetBackend {
	case "supabase":
		if c.SupabaseURL == "" || c.SupabasePublishableKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required for the supabase asset backend")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" || c.S3PublicBaseURL == "" {
			return fmt.Errorf("S3_BUCKET, S3_REGION and S3_PUBLIC_BASE_URL are required for the s3 asset backend")
		}
	default:
		return fmt.Errorf("ASSET_BACKEND must be supabase or s3, got %q", c.AssetBackend)
	}
	if c.PayPalMode != "sandbox" && c.PayPalMode != "live" && c.PayPalMode != "production" {
		return fmt.Errorf("PAYPAL_MODE must be sandbox or live, got %q", c.PayPalMode)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// ApplySystemConfig fills credential fields that the environment left empty
// with values stored in the system_config table. It runs once at startup; the
// environment always wins.
func (c *Config) ApplySystemConfig(values map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			if v := strings.TrimSpace(values[key]); v != "" {
				*dst = v
			}
		}
	}
	fill(&c.HunyuanSecretID, "HUNYUAN_SECRET_ID")
	fill(&c.HunyuanSecretKey, "HUNYUAN_SECRET_KEY")
	fill(&c.PayPalClientID, "PAYPAL_CLIENT_ID")
	fill(&c.PayPalClientSecret, "PAYPAL_CLIENT_SECRET")
	if v := strings.ToLower(strings.TrimSpace(values["PAYPAL_MODE"])); v != "" && os.Getenv("PAYPAL_MODE") == "" {
		c.PayPalMode = v
	}
}

func (c *Config) ValidateProviders() error {
	if c.HunyuanSecretID == "" || c.HunyuanSecretKey == "" {
		return fmt.Errorf("HUNYUAN_SECRET_ID and HUNYUAN_SECRET_KEY are required")
	}
	if c.PayPalClientID == "" || c.PayPalClientSecret == "" {
		return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required")
	}
	return nil
}

// PayPalAPIBaseURL resolves the PayPal REST host for the configured mode.
func (c *Config) PayPalAPIBaseURL() string {
	if c.PayPalBaseURL != "" {
		return strings.TrimSuffix(c.PayPalBaseURL, "/")
	}
	if c.PayPalMode == "live" || c.PayPalMode == "production" {
		return "https://api-m.paypal.com"
	}
	return "https://api-m.sandbox.paypal.com"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func loadEnvFile() error {
	path := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
