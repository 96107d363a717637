package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the regulations QA system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains the OpenAI-compatible provider configuration
type LLMConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	GenerationModel string        `mapstructure:"generation_model"`
	RerankModel     string        `mapstructure:"rerank_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if strings.TrimSpace(l.EmbeddingModel) == "" {
		return fmt.Errorf("llm.embedding_model is required")
	}
	return nil
}

// ChunkingConfig controls how page text is segmented before indexing
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`    // characters per chunk
	OverlapUnits int `mapstructure:"overlap_units"` // sentence-equivalents carried across chunks
}

// Normalize applies defaults for unset chunking values.
func (c ChunkingConfig) Normalize() ChunkingConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 900
	}
	if c.OverlapUnits < 0 {
		c.OverlapUnits = 0
	}
	return c
}

// RetrievalConfig controls the recall/rerank/selection stages
type RetrievalConfig struct {
	Dataset        string `mapstructure:"dataset"`
	RecallK        int    `mapstructure:"recall_k"`       // candidates fetched per query in the recall stage
	TopK           int    `mapstructure:"top_k"`          // final evidence budget
	MinPerSeason   int    `mapstructure:"min_per_season"` // comparison fairness floor
	MinSeason      int    `mapstructure:"min_season"`     // valid season range lower bound
	MaxSeason      int    `mapstructure:"max_season"`     // valid season range upper bound
	RerankEnabled  bool   `mapstructure:"rerank_enabled"`
	RerankMaxChars int    `mapstructure:"rerank_max_chars"` // per-candidate snippet clip for the oracle
}

// Normalize applies the documented defaults for unset retrieval values.
func (r RetrievalConfig) Normalize() RetrievalConfig {
	if strings.TrimSpace(r.Dataset) == "" {
		r.Dataset = "fia"
	}
	if r.RecallK <= 0 {
		r.RecallK = 40
	}
	if r.TopK <= 0 {
		r.TopK = 6
	}
	if r.MinPerSeason <= 0 {
		r.MinPerSeason = 2
	}
	if r.MinSeason <= 0 {
		r.MinSeason = 2018
	}
	if r.MaxSeason <= 0 {
		r.MaxSeason = 2026
	}
	if r.RerankMaxChars <= 0 {
		r.RerankMaxChars = 900
	}
	return r
}

func (r RetrievalConfig) Validate() error {
	if r.MinSeason > r.MaxSeason {
		return fmt.Errorf("retrieval.min_season must not exceed retrieval.max_season")
	}
	if r.TopK > r.RecallK {
		return fmt.Errorf("retrieval.top_k must not exceed retrieval.recall_k")
	}
	return nil
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a postgres connection string from the configured fields.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains Redis connection settings. Redis is optional: when the
// host is empty the embedding cache is disabled.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "60s")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("llm.generation_model", "gpt-4.1-mini")
	viper.SetDefault("llm.rerank_model", "gpt-4.1-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("chunking.chunk_size", 900)
	viper.SetDefault("chunking.overlap_units", 1)
	viper.SetDefault("retrieval.dataset", "fia")
	viper.SetDefault("retrieval.recall_k", 40)
	viper.SetDefault("retrieval.top_k", 6)
	viper.SetDefault("retrieval.min_per_season", 2)
	viper.SetDefault("retrieval.min_season", 2018)
	viper.SetDefault("retrieval.max_season", 2026)
	viper.SetDefault("retrieval.rerank_enabled", true)
	viper.SetDefault("retrieval.rerank_max_chars", 900)
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("REGRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional when every value comes from env/defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	config.Chunking = config.Chunking.Normalize()
	config.Retrieval = config.Retrieval.Normalize()

	if err := config.Retrieval.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
