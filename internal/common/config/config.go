package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Search        SearchConfig        `mapstructure:"search"`
	Completion    CompletionConfig    `mapstructure:"completion"`
	FetchQueue    FetchQueueConfig    `mapstructure:"fetch_queue"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Billing       BillingConfig       `mapstructure:"billing"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type AppConfig struct {
	Name           string `mapstructure:"name"`
	Version        string `mapstructure:"version"`
	Environment    string `mapstructure:"environment"`
	MetricsPort    int    `mapstructure:"metrics_port"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
}

// SearchConfig configures the external search provider client.
type SearchConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// CompletionConfig configures the text-completion backend.
type CompletionConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// FetchQueueConfig configures the page-fetch job queue client.
type FetchQueueConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// CategoryRule maps a URL substring pattern to a taxonomy category.
type CategoryRule struct {
	Pattern  string `mapstructure:"pattern"`
	Category string `mapstructure:"category"`
}

// RetrievalConfig holds the iteration loop and fusion parameters.
type RetrievalConfig struct {
	MaxIterations        int            `mapstructure:"max_iterations"`
	ConvergenceThreshold float64        `mapstructure:"convergence_threshold"`
	MaxVariants          int            `mapstructure:"max_variants"`
	FusionK              int            `mapstructure:"fusion_k"`
	FusionBeta           float64        `mapstructure:"fusion_beta"`
	MaxSpans             int            `mapstructure:"max_spans"`
	RequestDeadline      time.Duration  `mapstructure:"request_deadline"`
	CategoryRules        []CategoryRule `mapstructure:"category_rules"`
}

type BillingConfig struct {
	CreditsPerFetch int `mapstructure:"credits_per_fetch"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
