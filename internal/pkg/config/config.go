package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/LukasBrandt/PaperFig/internal/pkg/env"
)

// AppConfig is the typed application configuration, loaded and validated once
// at startup. Missing required keys stop the process instead of limping along
// with empty values.
type AppConfig struct {
	PublicDomain string

	StripeSecretKey       string
	StripeWebhookSecret   string
	StripePricePro        string
	StripePriceEnterprise string

	PipelineURL     string
	PipelineTimeout time.Duration

	FigureDir           string
	DownloadTokenSecret string
	JobWorkers          int

	// DemoMode skips the provider subscription check and treats every login
	// as subscribed. Sandbox use only; never enable in production.
	DemoMode bool
}

var loaded *AppConfig

// Load reads the configuration from the environment and validates it.
// The result is cached; subsequent calls return the same instance.
func Load() (*AppConfig, error) {
	if loaded != nil {
		return loaded, nil
	}

	cfg := &AppConfig{
		PublicDomain:          env.GetEnv("PUBLIC_DOMAIN", ""),
		StripeSecretKey:       env.GetEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePricePro:        env.GetEnv("STRIPE_PRICE_PRO", ""),
		StripePriceEnterprise: env.GetEnv("STRIPE_PRICE_ENTERPRISE", ""),
		PipelineURL:           env.GetEnv("PIPELINE_URL", ""),
		FigureDir:             env.GetEnv("FIGURE_DIR", "./figures"),
		DownloadTokenSecret:   env.GetEnv("DOWNLOAD_TOKEN_SECRET", ""),
		DemoMode:              env.GetEnv("DEMO_MODE", "false") == "true",
	}

	if cfg.PublicDomain == "" {
		return nil, fmt.Errorf("PUBLIC_DOMAIN environment variable is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY environment variable is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET environment variable is required")
	}
	if cfg.StripePricePro == "" {
		return nil, fmt.Errorf("STRIPE_PRICE_PRO environment variable is required")
	}
	if cfg.StripePriceEnterprise == "" {
		return nil, fmt.Errorf("STRIPE_PRICE_ENTERPRISE environment variable is required")
	}
	if cfg.PipelineURL == "" {
		return nil, fmt.Errorf("PIPELINE_URL environment variable is required")
	}
	if cfg.DownloadTokenSecret == "" {
		return nil, fmt.Errorf("DOWNLOAD_TOKEN_SECRET environment variable is required")
	}

	timeoutStr := env.GetEnv("PIPELINE_TIMEOUT", "5m")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("PIPELINE_TIMEOUT must be a valid duration: %w", err)
	}
	cfg.PipelineTimeout = timeout

	workersStr := env.GetEnv("JOB_WORKERS", "3")
	workers, err := strconv.Atoi(workersStr)
	if err != nil {
		return nil, fmt.Errorf("JOB_WORKERS must be a valid integer: %w", err)
	}
	cfg.JobWorkers = workers

	loaded = cfg
	return cfg, nil
}

// MustLoad is Load for main: it panics on a configuration error so the
// process never starts half-configured.
func MustLoad() *AppConfig {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("configuration error: %v", err))
	}
	return cfg
}

// Reset drops the cached configuration. Test helper.
func Reset() {
	loaded = nil
}
