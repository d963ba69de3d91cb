// Package pipeline drives the four-stage nudge generation state machine:
// ingest, retrieve, analyze, generate. Every stage times itself and always
// produces output, real or fallback, so a run always terminates in a
// well-formed result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nudged-ai/nudged/internal/llm"
	"github.com/nudged-ai/nudged/internal/retrieval"
	"github.com/nudged-ai/nudged/internal/userdata"
)

// Latency map keys, one per stage plus the whole-run total. Keys are only
// ever added to the map, never removed.
const (
	StageIngestion  = "ingestion"
	StageRetrieval  = "retrieval"
	StageAnalysis   = "analysis"
	StageGeneration = "nudge_generation"
	StageTotal      = "total"
)

// Fallback texts substituted when an LLM call fails.
const (
	FallbackAnalysis = "Unable to analyze context."
	FallbackNudge    = "I'm here to help! How can I assist you today?"
)

// DefaultTopK is the number of context items retrieved per run.
const DefaultTopK = 3

// TokenCount accumulates prompt and completion tokens across LLM calls.
// Counters only increase.
type TokenCount struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// State is the single mutable record threaded through all four stages.
// It is created at pipeline entry and owned by one run exclusively.
type State struct {
	RunID    string             `json:"run_id"`
	UserData userdata.UserData  `json:"-"`
	Context  string             `json:"context,omitempty"`
	Analysis string             `json:"analysis,omitempty"`
	Nudge    string             `json:"nudge"`
	Latency  map[string]float64 `json:"latency_breakdown_ms"`
	Tokens   TokenCount         `json:"cost_tokens"`
	Err      string             `json:"error,omitempty"`
}

func newState(data userdata.UserData) *State {
	return &State{
		RunID:    uuid.NewString(),
		UserData: data,
		Latency:  make(map[string]float64),
	}
}

// recordError keeps the first error and appends later ones.
func (s *State) recordError(stage string, err error) {
	msg := fmt.Sprintf("%s error: %v", stage, err)
	if s.Err == "" {
		s.Err = msg
		return
	}
	s.Err += "; " + msg
}

// Pipeline generates nudges. Construct one per configuration; each Run
// rebuilds the retrieval index from the supplied snapshot, so concurrent
// runs must not share a Pipeline.
type Pipeline struct {
	manager retrieval.Manager
	model   llm.Generator
	logger  *slog.Logger
	topK    int
}

// New creates a pipeline over the given retrieval manager and LLM client.
func New(manager retrieval.Manager, model llm.Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		manager: manager,
		model:   model,
		logger:  logger,
		topK:    DefaultTopK,
	}
}

// Run executes all four stages in order and returns the final state.
// LLM failures during analysis or generation are recovered with fallback
// text; only a failure while building the index aborts the run, and even
// then a structured result with a fallback nudge is returned.
func (p *Pipeline) Run(ctx context.Context, data userdata.UserData) *State {
	start := time.Now()
	state := newState(data)
	log := p.logger.With("run_id", state.RunID)

	if err := p.ingest(ctx, state); err != nil {
		state.recordError("ingestion", err)
		state.Nudge = FallbackNudge
		state.Latency[StageTotal] = msSince(start)
		log.Error("ingestion failed", "error", err)
		return state
	}

	p.retrieve(ctx, state, log)
	p.analyze(ctx, state, log)
	p.generate(ctx, state, log)

	state.Latency[StageTotal] = msSince(start)
	log.Info("nudge generated",
		"total_ms", state.Latency[StageTotal],
		"input_tokens", state.Tokens.Input,
		"output_tokens", state.Tokens.Output)
	return state
}

// ingest flattens the snapshot into tagged items and builds the index.
// The only fatal stage.
func (p *Pipeline) ingest(ctx context.Context, state *State) error {
	start := time.Now()

	items := state.UserData.Flatten()
	if err := p.manager.AddContexts(ctx, items); err != nil {
		state.Latency[StageIngestion] = msSince(start)
		return fmt.Errorf("add contexts: %w", err)
	}

	state.Latency[StageIngestion] = msSince(start)
	return nil
}

// retrieve builds the query from the most recent email and fitness
// activity and fetches context from the active manager.
func (p *Pipeline) retrieve(ctx context.Context, state *State, log *slog.Logger) {
	start := time.Now()

	query := buildQuery(state.UserData)
	result, err := p.manager.Retrieve(ctx, query, p.topK)
	if err != nil {
		state.recordError("retrieval", err)
		state.Latency[StageRetrieval] = msSince(start)
		log.Warn("retrieval failed, continuing without context", "error", err)
		return
	}

	state.Context = result.Context
	state.Latency[StageRetrieval] = float64(result.Latency) / float64(time.Millisecond)
	log.Debug("context retrieved", "method", result.Method, "relevance", result.Relevance)
}

// analyze asks the LLM to summarize emotional state, stress indicators
// and immediate needs from the retrieved context.
func (p *Pipeline) analyze(ctx context.Context, state *State, log *slog.Logger) {
	start := time.Now()

	prompt := fmt.Sprintf(`Analyze the following user context and infer their current mood, stress level, and needs.

Context:
%s

Provide a brief analysis (2-3 sentences) of:
1. Current emotional state
2. Stress indicators
3. Immediate needs or concerns

Analysis:`, state.Context)

	text, usage, err := p.model.Generate(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		state.recordError("analysis", err)
		state.Analysis = FallbackAnalysis
		log.Warn("analysis failed, using fallback", "error", err)
	} else {
		state.Analysis = text
		state.Tokens.Input += usage.PromptTokens
		state.Tokens.Output += usage.CompletionTokens
	}

	state.Latency[StageAnalysis] = msSince(start)
}

// generate produces the final nudge from context, analysis and up to
// three recent music preferences.
func (p *Pipeline) generate(ctx context.Context, state *State, log *slog.Logger) {
	start := time.Now()

	prompt := fmt.Sprintf(`Based on the following analysis and context, generate a proactive, helpful nudge or suggestion for the user.

Context:
%s

Analysis:
%s

Recent Music Preferences:
%s

Generate a brief, personalized nudge (1-2 sentences) that:
- Addresses their current state
- Provides actionable advice or suggestion
- Is empathetic and supportive
- Can reference their preferences if relevant

Nudge:`, state.Context, state.Analysis, musicPreferences(state.UserData.Music))

	text, usage, err := p.model.Generate(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		state.recordError("nudge generation", err)
		state.Nudge = FallbackNudge
		log.Warn("nudge generation failed, using fallback", "error", err)
	} else {
		state.Nudge = strings.TrimSpace(text)
		state.Tokens.Input += usage.PromptTokens
		state.Tokens.Output += usage.CompletionTokens
	}

	state.Latency[StageGeneration] = msSince(start)
}

// buildQuery derives the retrieval query from the most recent email
// subject and fitness activity, with a generic fallback when neither
// exists. Recomputed per run, never stored.
func buildQuery(data userdata.UserData) string {
	var parts []string
	if len(data.Emails) > 0 {
		parts = append(parts, fmt.Sprintf("Recent email: %s", data.Emails[len(data.Emails)-1].Subject))
	}
	if len(data.Fitness) > 0 {
		parts = append(parts, fmt.Sprintf("Current activity: %s", data.Fitness[len(data.Fitness)-1].ActivityType))
	}
	if len(parts) == 0 {
		return "user context and mood"
	}
	return strings.Join(parts, " ")
}

// musicPreferences formats up to the three most recent tracks.
func musicPreferences(tracks []userdata.MusicTrack) string {
	if len(tracks) == 0 {
		return "None"
	}
	if len(tracks) > 3 {
		tracks = tracks[len(tracks)-3:]
	}
	lines := make([]string, len(tracks))
	for i, track := range tracks {
		lines[i] = fmt.Sprintf("- %s by %s (%s)", track.TrackName, track.Artist, track.Mood)
	}
	return strings.Join(lines, "\n")
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
