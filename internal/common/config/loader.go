package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	candidates := []string{
		".env",
		filepath.Join("..", "..", ".env"),
		filepath.Join("configs", ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "search-orchestrator"
	}
	if cfg.App.MetricsPort == 0 {
		cfg.App.MetricsPort = 9102
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10 * time.Second
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 20
	}
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 30 * time.Second
	}
	if cfg.Completion.Temperature == 0 {
		cfg.Completion.Temperature = 0.3
	}
	if cfg.FetchQueue.DefaultTimeout == 0 {
		cfg.FetchQueue.DefaultTimeout = 35 * time.Second
	}
	if cfg.FetchQueue.MaxConcurrency == 0 {
		cfg.FetchQueue.MaxConcurrency = 16
	}
	if cfg.Retrieval.MaxIterations == 0 {
		cfg.Retrieval.MaxIterations = 2
	}
	if cfg.Retrieval.ConvergenceThreshold == 0 {
		cfg.Retrieval.ConvergenceThreshold = 0.6
	}
	if cfg.Retrieval.MaxVariants == 0 {
		cfg.Retrieval.MaxVariants = 3
	}
	if cfg.Retrieval.FusionK == 0 {
		cfg.Retrieval.FusionK = 60
	}
	if cfg.Retrieval.FusionBeta == 0 {
		cfg.Retrieval.FusionBeta = 0.1
	}
	if cfg.Retrieval.MaxSpans == 0 {
		cfg.Retrieval.MaxSpans = 3
	}
	if cfg.Retrieval.RequestDeadline == 0 {
		cfg.Retrieval.RequestDeadline = 2 * time.Minute
	}
	if cfg.Billing.CreditsPerFetch == 0 {
		cfg.Billing.CreditsPerFetch = 1
	}
	if cfg.Elasticsearch.AuditIndex == "" {
		cfg.Elasticsearch.AuditIndex = "retrieval-audit"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Retrieval.MaxIterations < 1 {
		return fmt.Errorf("retrieval.max_iterations must be >= 1")
	}
	if cfg.Retrieval.ConvergenceThreshold < 0 || cfg.Retrieval.ConvergenceThreshold > 1 {
		return fmt.Errorf("retrieval.convergence_threshold must be in [0,1]")
	}
	if cfg.Retrieval.FusionK <= 0 {
		return fmt.Errorf("retrieval.fusion_k must be > 0")
	}
	return nil
}
