package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the remedex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Index     IndexConfig     `yaml:"index"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Cache     CacheConfig     `yaml:"cache"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File       string `yaml:"file"`  // optional rotating JSON sink
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai, fastembed
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	CacheDir   string `yaml:"cache_dir"`
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Prefix     string `yaml:"prefix"` // prepended to every text, e.g. "query: "
}

// LLMConfig configures the OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	RatePerSec  float64 `yaml:"rate_per_sec"` // 0 = unlimited
}

// IndexConfig selects where snapshots are persisted.
type IndexConfig struct {
	Driver           string `yaml:"driver"` // file, qdrant
	Dir              string `yaml:"dir"`
	QdrantHost       string `yaml:"qdrant_host"`
	QdrantPort       int    `yaml:"qdrant_port"`
	QdrantAPIKey     string `yaml:"qdrant_api_key"`
	QdrantTLS        bool   `yaml:"qdrant_tls"`
	QdrantCollection string `yaml:"qdrant_collection"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	RebuildOnStart   bool   `yaml:"rebuild_on_start"`
}

// KnowledgeConfig locates the knowledge base.
type KnowledgeConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	Watch       bool   `yaml:"watch"`
	DebounceSec int    `yaml:"debounce_sec"`
}

// ScoringConfig tunes retrieval, LLM scoring and ranking.
type ScoringConfig struct {
	ChunkSize  int     `yaml:"chunk_size"`
	Threshold  float64 `yaml:"threshold"`
	Workers    int     `yaml:"workers"`
	K          int     `yaml:"k"`
	MaxResults int     `yaml:"max_results"`
}

// PipelineConfig holds CI credentials and TLS settings.
type PipelineConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	CABundle           string `yaml:"ca_bundle"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	TimeoutSec         int    `yaml:"timeout_sec"`
	MaxLines           int    `yaml:"max_lines"`
}

// CacheConfig enables the Redis embedding cache when Addrs is set.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// NotifyConfig enables NATS notifications when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 180 // analyze waits on LLM calls
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "fastembed"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 100
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}

	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-oss"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}

	if c.Index.Driver == "" {
		c.Index.Driver = "file"
	}
	if c.Index.Dir == "" {
		c.Index.Dir = "data"
	}
	if c.Index.QdrantPort <= 0 {
		c.Index.QdrantPort = 6334
	}
	if c.Index.QdrantCollection == "" {
		c.Index.QdrantCollection = "remedex_knowledge"
	}
	if c.Index.TimeoutSec <= 0 {
		c.Index.TimeoutSec = 30
	}

	if c.Knowledge.DebounceSec <= 0 {
		c.Knowledge.DebounceSec = 2
	}

	if c.Scoring.ChunkSize <= 0 {
		c.Scoring.ChunkSize = 10
	}
	if c.Scoring.Threshold <= 0 {
		c.Scoring.Threshold = 0.6
	}
	if c.Scoring.Workers <= 0 {
		c.Scoring.Workers = 4
	}
	if c.Scoring.K <= 0 {
		c.Scoring.K = 5
	}
	if c.Scoring.MaxResults <= 0 {
		c.Scoring.MaxResults = 5
	}

	if c.Pipeline.User == "" {
		c.Pipeline.User = os.Getenv("JENKINS_USER")
	}
	if c.Pipeline.Password == "" {
		c.Pipeline.Password = os.Getenv("JENKINS_PASS")
	}
	if c.Pipeline.CABundle == "" {
		c.Pipeline.CABundle = os.Getenv("JENKINS_CA_BUNDLE")
	}
	if c.Pipeline.TimeoutSec <= 0 {
		c.Pipeline.TimeoutSec = 30
	}
	if c.Pipeline.MaxLines <= 0 {
		c.Pipeline.MaxLines = 100
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}

	if c.Notify.Subject == "" {
		c.Notify.Subject = "remedex.analysis.completed"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.Dimensions < 0 {
			return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
		}
	case "fastembed":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"fastembed\", got %q", c.Embedding.Provider)
	}
	switch c.Index.Driver {
	case "file":
	case "qdrant":
		if c.Index.QdrantHost == "" {
			return fmt.Errorf("index.qdrant_host is required for the qdrant driver")
		}
	default:
		return fmt.Errorf("index.driver must be \"file\" or \"qdrant\", got %q", c.Index.Driver)
	}
	if c.Scoring.Threshold >= 1 {
		return fmt.Errorf("scoring.threshold must be below 1, got %v", c.Scoring.Threshold)
	}
	if c.Knowledge.Watch && c.Knowledge.SQLitePath == "" {
		return fmt.Errorf("knowledge.watch requires knowledge.sqlite_path")
	}
	if c.Pipeline.InsecureSkipVerify && c.Pipeline.CABundle != "" {
		return fmt.Errorf("pipeline.insecure_skip_verify and pipeline.ca_bundle are mutually exclusive")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
