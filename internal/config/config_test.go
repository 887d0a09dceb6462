package config_test

import (
	"testing"
	"time"

	"github.com/lendborrow/lendborrow-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STAGE", "PORT", "RPC_URL", "ARTIFACTS_DIR", "CONTRACT_NAME",
		"CLASSIFY_TIMEOUT", "RECEIPT_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Stage)
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, config.DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, config.DefaultArtifactsDir, cfg.ArtifactsDir)
	assert.Equal(t, "LendBorrowContract", cfg.ContractName)
	assert.Equal(t, config.DefaultClassifyTimeout, cfg.ClassifyTimeout)
	assert.Equal(t, config.DefaultReceiptTimeout, cfg.ReceiptTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STAGE", "prod")
	t.Setenv("RPC_URL", "http://node:8545")
	t.Setenv("CLASSIFY_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example , https://admin.example ,")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, 3*time.Second, cfg.ClassifyTimeout)
	assert.Equal(t, 5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown stage", "STAGE", "staging"},
		{"bad duration", "CLASSIFY_TIMEOUT", "soon"},
		{"negative duration", "RECEIPT_TIMEOUT", "-1s"},
		{"non numeric rate", "RATE_LIMIT_RPS", "many"},
		{"zero burst", "RATE_LIMIT_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
