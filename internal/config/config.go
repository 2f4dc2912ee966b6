// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the support bot.
type Config struct {
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	Document  DocumentConfig  `mapstructure:"document"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	LogFile   string          `mapstructure:"log_file"`
}

// OllamaConfig selects the external models. Model identity is configuration,
// not a contract of the core.
type OllamaConfig struct {
	Host           string `mapstructure:"host"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	QAModel        string `mapstructure:"qa_model"`
}

// RetrievalConfig tunes the nearest-section lookup.
type RetrievalConfig struct {
	// SimilarityThreshold is the minimum cosine similarity for a match.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// FeedbackConfig tunes the simulated-feedback refinement loop.
type FeedbackConfig struct {
	// ConfidenceThreshold below which an answer is judged too vague.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	// MaxIterations is the hard cap on refinement iterations per query.
	MaxIterations int `mapstructure:"max_iterations"`
}

// DocumentConfig locates the source document.
type DocumentConfig struct {
	// Path of the active document; the default sample FAQ is generated here
	// when the file is missing.
	Path string `mapstructure:"path"`
	// DataDir receives documents uploaded through the web front end.
	DataDir string `mapstructure:"data_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects the optional persistent section store. An empty
// PostgresURL keeps the index in memory.
type StorageConfig struct {
	PostgresURL string `mapstructure:"postgres_url"`
}

// Load reads configuration from the given file (optional) with SUPPORTBOT_*
// environment overrides, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SUPPORTBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the core cannot work with.
func (c *Config) Validate() error {
	if c.Retrieval.SimilarityThreshold < -1 || c.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("retrieval.similarity_threshold must be in [-1,1], got %v", c.Retrieval.SimilarityThreshold)
	}
	if c.Feedback.ConfidenceThreshold < 0 || c.Feedback.ConfidenceThreshold > 1 {
		return fmt.Errorf("feedback.confidence_threshold must be in [0,1], got %v", c.Feedback.ConfidenceThreshold)
	}
	if c.Feedback.MaxIterations <= 0 {
		return fmt.Errorf("feedback.max_iterations must be > 0, got %d", c.Feedback.MaxIterations)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ollama.host", "")
	v.SetDefault("ollama.embedding_model", "nomic-embed-text")
	v.SetDefault("ollama.qa_model", "phi3-mini")
	v.SetDefault("retrieval.similarity_threshold", 0.30)
	v.SetDefault("feedback.confidence_threshold", 0.35)
	v.SetDefault("feedback.max_iterations", 2)
	v.SetDefault("document.path", "faq.txt")
	v.SetDefault("document.data_dir", "data")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("log_file", "support_bot_log.txt")
}
