package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon")
	t.Setenv("DATABASE_URL", "postgres://localhost/pet3d")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "supabase", cfg.AssetBackend)
	assert.Equal(t, "sandbox", cfg.PayPalMode)
	assert.Equal(t, "USD", cfg.PayPalCurrency)
	assert.Equal(t, "https://ai3d.tencentcloudapi.com", cfg.HunyuanEndpoint)
	assert.Equal(t, 30, cfg.StatusPollsPerMinute)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, "https://api-m.sandbox.paypal.com", cfg.PayPalAPIBaseURL())
	assert.False(t, cfg.IsProduction())
}

func TestLoadMissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SUPABASE_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_DRIVER")
}

func TestLoadS3BackendRequiresBucket(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ASSET_BACKEND", "s3")

	_, err := Load()
	assert.ErrorContains(t, err, "S3_BUCKET")

	t.Setenv("S3_BUCKET", "assets")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example.com")
	_, err = Load()
	assert.NoError(t, err)
}

func TestApplySystemConfigKeepsEnvironment(t *testing.T) {
	t.Setenv("PAYPAL_MODE", "")
	cfg := &Config{
		HunyuanSecretID: "from-env",
		PayPalMode:      "sandbox",
	}

	cfg.ApplySystemConfig(map[string]string{
		"HUNYUAN_SECRET_ID":    "from-db",
		"HUNYUAN_SECRET_KEY":   "key-from-db",
		"PAYPAL_CLIENT_ID":     "client",
		"PAYPAL_CLIENT_SECRET": "  secret  ",
		"PAYPAL_MODE":          "LIVE",
	})

	assert.Equal(t, "from-env", cfg.HunyuanSecretID)
	assert.Equal(t, "key-from-db", cfg.HunyuanSecretKey)
	assert.Equal(t, "secret", cfg.PayPalClientSecret)
	assert.Equal(t, "live", cfg.PayPalMode)
	assert.Equal(t, "https://api-m.paypal.com", cfg.PayPalAPIBaseURL())
	assert.NoError(t, cfg.ValidateProviders())
}

func TestValidateProvidersMissingCredentials(t *testing.T) {
	cfg := &Config{HunyuanSecretID: "id", HunyuanSecretKey: "key"}
	assert.ErrorContains(t, cfg.ValidateProviders(), "PAYPAL_CLIENT_ID")
}

func TestPayPalBaseURLOverride(t *testing.T) {
	cfg := &Config{PayPalBaseURL: "http://127.0.0.1:9000/"}
	assert.Equal(t, "http://127.0.0.1:9000", cfg.PayPalAPIBaseURL())
}
