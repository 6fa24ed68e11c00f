package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "MDT", cfg.Mandate.ReferencePrefix)
	assert.True(t, cfg.Mandate.AutoIssuePdf)
	assert.Equal(t, 3, cfg.Mandate.ReferenceRetries)
	assert.False(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.LoginAttempts = 0
	assert.ErrorContains(t, cfg.Validate(), "rate limit")

	cfg.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidateReferencePrefix(t *testing.T) {
	for _, prefix := range []string{"", "M", "MANDATES1", "MD-T", "M1T", "ÉTAT"} {
		cfg := Default()
		cfg.Mandate.ReferencePrefix = prefix
		assert.ErrorContains(t, cfg.Validate(), "reference prefix", "prefix %q", prefix)
	}
	for _, prefix := range []string{"CI", "civ", " MND ", "MANDATES"} {
		cfg := Default()
		cfg.Mandate.ReferencePrefix = prefix
		assert.NoError(t, cfg.Validate(), "prefix %q", prefix)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"MANDATE_ADDR":             ":9090",
		"MANDATE_KAFKA_BROKERS":    "k1:9092, k2:9092,",
		"MANDATE_AUTO_ISSUE_PDF":   "false",
		"MANDATE_ACCESS_TOKEN_TTL": "90m",
		"MANDATE_REFERENCE_PREFIX": "  MND ",
		"MANDATE_LOG_LEVEL":        "",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Mandate.AutoIssuePdf)
	assert.Equal(t, 90*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "MND", cfg.Mandate.ReferencePrefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"MANDATE_AUTO_ISSUE_PDF":    "maybe",
		"MANDATE_REFERENCE_RETRIES": "three",
		"MANDATE_ACCESS_TOKEN_TTL":  "forever",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MANDATE_AUTO_ISSUE_PDF")
	assert.Contains(t, err.Error(), "MANDATE_REFERENCE_RETRIES")
	assert.Contains(t, err.Error(), "MANDATE_ACCESS_TOKEN_TTL")
}

func TestMergeFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mandate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7070"
mandate:
  reference_prefix: "CIV"
  auto_issue_pdf: false
kafka:
  brokers: ["file:9092"]
`), 0o600))

	cfg := Default()
	require.NoError(t, cfg.mergeFile(path))
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "CIV", cfg.Mandate.ReferencePrefix)
	assert.False(t, cfg.Mandate.AutoIssuePdf)
	assert.Equal(t, 3, cfg.Mandate.ReferenceRetries)

	require.NoError(t, cfg.applyEnv(lookupFrom(map[string]string{"MANDATE_ADDR": ":6060"})))
	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.Equal(t, []string{"file:9092"}, cfg.Kafka.Brokers)
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv("MANDATE_CONFIG_FILE", "")
	t.Setenv("MANDATE_ADDR", ":8181")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Server.Addr)
}

func TestValidateProduction(t *testing.T) {
	cfg := Default()
	cfg.Environment = "production"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MANDATE_JWT_SIGNING_KEY")
	assert.Contains(t, err.Error(), "MANDATE_DOCUMENT_SIGNING_KEY")
	assert.Contains(t, err.Error(), "MANDATE_DATABASE_URL")

	cfg.Auth.JWTSigningKey = "0123456789abcdef0123456789abcdef"
	cfg.Documents.SigningKey = "fedcba9876543210fedcba9876543210"
	cfg.Database.URL = "postgres://mandate@db/mandate"
	assert.NoError(t, cfg.Validate())
}

func TestMergeFileMissing(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.mergeFile(filepath.Join(t.TempDir(), "absent.yaml")))
}
