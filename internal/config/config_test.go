package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.LLMProvider != ProviderOllama {
		t.Errorf("LLMProvider = %q, want ollama", cfg.LLMProvider)
	}
	if cfg.Strategy != StrategyMultiKey {
		t.Errorf("Strategy = %q, want multikey", cfg.Strategy)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.EmbedDimension != 384 {
		t.Errorf("EmbedDimension = %d, want 384", cfg.EmbedDimension)
	}
	if cfg.TargetLatencyMS != 500 {
		t.Errorf("TargetLatencyMS = %v, want 500", cfg.TargetLatencyMS)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NUDGED_STRATEGY", "semantic")
	t.Setenv("NUDGED_TOP_K", "5")
	t.Setenv("NUDGED_LOG_LEVEL", "debug")
	t.Setenv("NUDGED_TARGET_LATENCY_MS", "250.5")

	cfg := Load()
	if cfg.Strategy != StrategySemantic {
		t.Errorf("Strategy = %q, want semantic", cfg.Strategy)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.TargetLatencyMS != 250.5 {
		t.Errorf("TargetLatencyMS = %v, want 250.5", cfg.TargetLatencyMS)
	}
}

func TestLoadEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("NUDGED_TOP_K", "not-a-number")

	if cfg := Load(); cfg.TopK != 3 {
		t.Errorf("TopK = %d, want default 3", cfg.TopK)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudged.yaml")
	content := `
strategy: semantic
top_k: 7
llm_model: gpt-4o-mini
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(Load(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Strategy != StrategySemantic {
		t.Errorf("Strategy = %q, want semantic", cfg.Strategy)
	}
	if cfg.TopK != 7 {
		t.Errorf("TopK = %d, want 7", cfg.TopK)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q, want overlay value", cfg.LLMModel)
	}
	// Fields absent from the file keep their env/default values.
	if cfg.EmbedDimension != 384 {
		t.Errorf("EmbedDimension = %d, want untouched default 384", cfg.EmbedDimension)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(Load(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{unclosed: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(Load(), path); err == nil {
		t.Error("LoadFile(malformed) error = nil")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
