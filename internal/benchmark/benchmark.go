// Package benchmark compares the two retrieval strategies over a fixed
// corpus and query set and picks one by a latency/relevance trade-off.
package benchmark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nudged-ai/nudged/internal/retrieval"
)

// relevanceMargin is the relative edge the semantic index must have over
// the multi-key index to be worth its extra cost.
const relevanceMargin = 1.1

// VariantStats aggregates one strategy's benchmark runs.
type VariantStats struct {
	Method        string  `json:"method"`
	Runs          int     `json:"runs"`
	MeanLatencyMS float64 `json:"mean_latency_ms"`
	MeanRelevance float64 `json:"mean_relevance"`
}

// Report is the outcome of one comparison.
type Report struct {
	Semantic VariantStats `json:"semantic"`
	MultiKey VariantStats `json:"multikey"`
	// Chosen is the method tag of the selected strategy.
	Chosen string `json:"chosen"`
}

// Comparator runs both managers over the same inputs. Deterministic given
// identical inputs and a deterministic embedding backend.
type Comparator struct {
	semantic retrieval.Manager
	multikey retrieval.Manager
	logger   *slog.Logger
}

// New creates a comparator over the two strategies.
func New(semantic, multikey retrieval.Manager, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{semantic: semantic, multikey: multikey, logger: logger}
}

// Compare indexes the corpus into both managers, retrieves every query
// `runs` times per manager, and aggregates mean latency and relevance.
func (c *Comparator) Compare(ctx context.Context, corpus []retrieval.Item, queries []string, runs, topK int) (Report, error) {
	if runs < 1 {
		runs = 1
	}

	if err := c.semantic.AddContexts(ctx, corpus); err != nil {
		return Report{}, fmt.Errorf("index corpus (semantic): %w", err)
	}
	if err := c.multikey.AddContexts(ctx, corpus); err != nil {
		return Report{}, fmt.Errorf("index corpus (multikey): %w", err)
	}

	semantic, err := c.measure(ctx, c.semantic, retrieval.MethodSemantic, queries, runs, topK)
	if err != nil {
		return Report{}, err
	}
	multikey, err := c.measure(ctx, c.multikey, retrieval.MethodMultiKey, queries, runs, topK)
	if err != nil {
		return Report{}, err
	}

	report := Report{Semantic: semantic, MultiKey: multikey}
	if ChooseSemantic(semantic.MeanRelevance, multikey.MeanRelevance) {
		report.Chosen = retrieval.MethodSemantic
	} else {
		report.Chosen = retrieval.MethodMultiKey
	}

	c.logger.Info("benchmark complete",
		"semantic_latency_ms", semantic.MeanLatencyMS,
		"semantic_relevance", semantic.MeanRelevance,
		"multikey_latency_ms", multikey.MeanLatencyMS,
		"multikey_relevance", multikey.MeanRelevance,
		"chosen", report.Chosen)
	return report, nil
}

func (c *Comparator) measure(ctx context.Context, manager retrieval.Manager, method string, queries []string, runs, topK int) (VariantStats, error) {
	stats := VariantStats{Method: method}
	var totalLatency time.Duration
	var totalRelevance float64

	for _, query := range queries {
		for i := 0; i < runs; i++ {
			result, err := manager.Retrieve(ctx, query, topK)
			if err != nil {
				return VariantStats{}, fmt.Errorf("retrieve %q (%s): %w", query, method, err)
			}
			totalLatency += result.Latency
			totalRelevance += result.Relevance
			stats.Runs++
		}
	}

	if stats.Runs > 0 {
		stats.MeanLatencyMS = float64(totalLatency) / float64(time.Millisecond) / float64(stats.Runs)
		stats.MeanRelevance = totalRelevance / float64(stats.Runs)
	}
	return stats, nil
}

// ChooseSemantic applies the decision rule: prefer the semantic index only
// when its mean relevance beats the multi-key index by more than 10%
// relative. Strictly greater; ties go to the cheaper multi-key index.
func ChooseSemantic(semanticRelevance, multikeyRelevance float64) bool {
	return semanticRelevance > multikeyRelevance*relevanceMargin
}
