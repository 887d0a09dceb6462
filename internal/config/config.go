package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lendborrow/lendborrow-api/internal/constants"
)

// Config holds the environment driven settings shared by the gate server and the probe
type Config struct {
	Stage    string
	LogLevel string
	Port     string

	RPCURL          string
	ArtifactsDir    string
	ContractName    string
	ClassifyTimeout time.Duration
	ReceiptTimeout  time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
}

// Defaults
const (
	DefaultPort            = "8000"
	DefaultRPCURL          = "http://127.0.0.1:7545"
	DefaultArtifactsDir    = "build/contracts"
	DefaultClassifyTimeout = 10 * time.Second
	DefaultReceiptTimeout  = 2 * time.Minute
	DefaultRateLimitRPS    = 20
	DefaultRateLimitBurst  = 40
)

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	stage := getEnvWithDefault("STAGE", constants.StageLocal)
	if !constants.IsValidStage(stage) {
		return nil, fmt.Errorf("invalid STAGE '%s'. Must be one of: %s, %s, %s",
			stage, constants.StageProd, constants.StageDev, constants.StageLocal)
	}

	classifyTimeout, err := getDuration("CLASSIFY_TIMEOUT", DefaultClassifyTimeout)
	if err != nil {
		return nil, err
	}
	receiptTimeout, err := getDuration("RECEIPT_TIMEOUT", DefaultReceiptTimeout)
	if err != nil {
		return nil, err
	}
	rps, err := getInt("RATE_LIMIT_RPS", DefaultRateLimitRPS)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("RATE_LIMIT_BURST", DefaultRateLimitBurst)
	if err != nil {
		return nil, err
	}

	return &Config{
		Stage:                stage,
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		Port:                 getEnvWithDefault("PORT", DefaultPort),
		RPCURL:               getEnvWithDefault("RPC_URL", DefaultRPCURL),
		ArtifactsDir:         getEnvWithDefault("ARTIFACTS_DIR", DefaultArtifactsDir),
		ContractName:         getEnvWithDefault("CONTRACT_NAME", constants.LendBorrowContractName),
		ClassifyTimeout:      classifyTimeout,
		ReceiptTimeout:       receiptTimeout,
		RateLimitRPS:         rps,
		RateLimitBurst:       burst,
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Correlation-ID"}),
		CORSAllowCredentials: os.Getenv("CORS_ALLOW_CREDENTIALS") == "true",
	}, nil
}

// IsDevelopment reports whether the stage is a non-production one
func (c *Config) IsDevelopment() bool {
	return c.Stage != constants.StageProd
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
