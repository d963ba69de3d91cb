// Package config loads configuration from the environment, with an
// optional YAML file overlay, and wires up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Strategy selects which retrieval index the pipeline uses.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategyMultiKey Strategy = "multikey"
)

// Config holds all configuration values.
type Config struct {
	// LLM generation
	LLMProvider     Provider `yaml:"llm_provider"`
	LLMModel        string   `yaml:"llm_model"`
	OllamaHost      string   `yaml:"ollama_host"`
	OpenAIAPIKey    string   `yaml:"openai_api_key"`
	AnthropicAPIKey string   `yaml:"anthropic_api_key"`

	// Embeddings (semantic index only)
	EmbedProvider  Provider `yaml:"embed_provider"`
	EmbedModel     string   `yaml:"embed_model"`
	EmbedDimension int      `yaml:"embed_dimension"`

	// Retrieval
	Strategy Strategy `yaml:"strategy"`
	TopK     int      `yaml:"top_k"`

	// Benchmarking
	BenchmarkRuns int `yaml:"benchmark_runs"`

	// Cost estimation and latency target
	CostPerInputToken  float64 `yaml:"cost_per_input_token"`
	CostPerOutputToken float64 `yaml:"cost_per_output_token"`
	TargetLatencyMS    float64 `yaml:"target_latency_ms"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		LLMProvider:     Provider(getEnv("NUDGED_LLM_PROVIDER", "ollama")),
		LLMModel:        getEnv("NUDGED_LLM_MODEL", "llama3.1"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		EmbedProvider:  Provider(getEnv("NUDGED_EMBED_PROVIDER", "ollama")),
		EmbedModel:     getEnv("NUDGED_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("NUDGED_EMBED_DIMENSION", 384),

		Strategy: Strategy(getEnv("NUDGED_STRATEGY", "multikey")),
		TopK:     getEnvInt("NUDGED_TOP_K", 3),

		BenchmarkRuns: getEnvInt("NUDGED_BENCHMARK_RUNS", 5),

		CostPerInputToken:  getEnvFloat("NUDGED_COST_PER_INPUT_TOKEN", 0.0000001),
		CostPerOutputToken: getEnvFloat("NUDGED_COST_PER_OUTPUT_TOKEN", 0.0000001),
		TargetLatencyMS:    getEnvFloat("NUDGED_TARGET_LATENCY_MS", 500),

		LogFile:  getEnv("NUDGED_LOG_FILE", "/tmp/nudged.log"),
		LogLevel: parseLogLevel(getEnv("NUDGED_LOG_LEVEL", "INFO")),
	}
}

// LoadFile overlays values from a YAML file onto cfg. Fields absent from
// the file keep their existing values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
