// Package metrics provides in-memory latency and cost statistics across
// pipeline runs.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// RunRecord captures one pipeline run.
type RunRecord struct {
	TotalLatencyMS float64
	Breakdown      map[string]float64
	InputTokens    int
	OutputTokens   int
	CostUSD        float64
	RecordedAt     time.Time
}

// LatencyStats summarizes total-latency samples in milliseconds.
type LatencyStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// CostStats summarizes token consumption and estimated spend.
type CostStats struct {
	TotalCostUSD      float64 `json:"total_cost_usd"`
	AvgCostPerRun     float64 `json:"avg_cost_per_run"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	AvgInputTokens    float64 `json:"avg_input_tokens"`
	AvgOutputTokens   float64 `json:"avg_output_tokens"`
}

// Report is a point-in-time summary of all recorded runs.
type Report struct {
	Runs       int                `json:"runs"`
	Latency    LatencyStats       `json:"latency_stats"`
	StageMeans map[string]float64 `json:"stage_means_ms"`
	Cost       CostStats          `json:"cost_stats"`
	TargetMet  bool               `json:"target_met"`
}

// Tracker records pipeline runs and derives aggregate statistics.
// All methods are thread-safe.
type Tracker struct {
	mu                 sync.Mutex
	records            []RunRecord
	costPerInputToken  float64
	costPerOutputToken float64
	targetLatencyMS    float64
}

// NewTracker creates a tracker with the given per-token prices and
// latency target.
func NewTracker(costPerInputToken, costPerOutputToken, targetLatencyMS float64) *Tracker {
	return &Tracker{
		costPerInputToken:  costPerInputToken,
		costPerOutputToken: costPerOutputToken,
		targetLatencyMS:    targetLatencyMS,
	}
}

// RecordRun records one pipeline run, computing its estimated cost.
func (t *Tracker) RecordRun(totalLatencyMS float64, breakdown map[string]float64, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Copy the breakdown so later mutation by the caller can't skew stats.
	bd := make(map[string]float64, len(breakdown))
	for k, v := range breakdown {
		bd[k] = v
	}

	t.records = append(t.records, RunRecord{
		TotalLatencyMS: totalLatencyMS,
		Breakdown:      bd,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		CostUSD:        float64(inputTokens)*t.costPerInputToken + float64(outputTokens)*t.costPerOutputToken,
		RecordedAt:     time.Now(),
	})
}

// Count returns the number of recorded runs.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Report computes aggregate statistics over all recorded runs.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := Report{StageMeans: make(map[string]float64)}
	n := len(t.records)
	if n == 0 {
		return report
	}
	report.Runs = n

	latencies := make([]float64, n)
	stageTotals := make(map[string]float64)
	stageCounts := make(map[string]int)

	for i, rec := range t.records {
		latencies[i] = rec.TotalLatencyMS
		report.Cost.TotalCostUSD += rec.CostUSD
		report.Cost.TotalInputTokens += rec.InputTokens
		report.Cost.TotalOutputTokens += rec.OutputTokens

		for stage, ms := range rec.Breakdown {
			if stage == "total" {
				continue
			}
			stageTotals[stage] += ms
			stageCounts[stage]++
		}
	}

	sort.Float64s(latencies)
	var sum float64
	for _, l := range latencies {
		sum += l
	}

	report.Latency = LatencyStats{
		Mean:   sum / float64(n),
		Median: percentile(latencies, 50),
		P95:    percentile(latencies, 95),
		P99:    percentile(latencies, 99),
		Min:    latencies[0],
		Max:    latencies[n-1],
	}

	for stage, total := range stageTotals {
		report.StageMeans[stage] = total / float64(stageCounts[stage])
	}

	report.Cost.AvgCostPerRun = report.Cost.TotalCostUSD / float64(n)
	report.Cost.AvgInputTokens = float64(report.Cost.TotalInputTokens) / float64(n)
	report.Cost.AvgOutputTokens = float64(report.Cost.TotalOutputTokens) / float64(n)
	report.TargetMet = report.Latency.Mean <= t.targetLatencyMS

	return report
}

// percentile computes the p-th percentile of sorted samples with linear
// interpolation between ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
