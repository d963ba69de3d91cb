package cli

import (
	"encoding/json"
	"fmt"

	"github.com/nudged-ai/nudged/internal/benchmark"
	"github.com/nudged-ai/nudged/internal/llm"
	"github.com/nudged-ai/nudged/internal/metrics"
	"github.com/nudged-ai/nudged/internal/pipeline"
	"github.com/nudged-ai/nudged/internal/retrieval"
	"github.com/nudged-ai/nudged/internal/userdata"
	"github.com/spf13/cobra"
)

var (
	benchmarkRuns    int
	pipelineRuns     int
	benchmarkQueries = []string{
		"user is stressed about deadline",
		"recent workout activity",
		"upcoming meeting",
		"music preferences",
		"email about urgent update",
	}
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <data.json>",
	Short: "Compare retrieval strategies and optionally benchmark the full pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := userdata.Load(args[0])
		if err != nil {
			return err
		}
		corpus := data.Flatten()

		embedder, err := llm.NewEmbedder(cfg)
		if err != nil {
			return err
		}

		runs := benchmarkRuns
		if runs <= 0 {
			runs = cfg.BenchmarkRuns
		}

		comparator := benchmark.New(retrieval.NewSemanticIndex(embedder), retrieval.NewMultiKeyIndex(), logger)
		report, err := comparator.Compare(cmd.Context(), corpus, benchmarkQueries, runs, cfg.TopK)
		if err != nil {
			return err
		}

		output := struct {
			Comparison benchmark.Report `json:"comparison"`
			Pipeline   *metrics.Report  `json:"pipeline,omitempty"`
		}{Comparison: report}

		if pipelineRuns > 0 {
			pipelineReport, err := runPipelineBenchmark(cmd, data, report.Chosen, embedder)
			if err != nil {
				return err
			}
			output.Pipeline = pipelineReport
		}

		out, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// runPipelineBenchmark runs the full pipeline repeatedly with the chosen
// strategy, recording latency and cost into a tracker.
func runPipelineBenchmark(cmd *cobra.Command, data userdata.UserData, chosen string, embedder *llm.Embedder) (*metrics.Report, error) {
	var manager retrieval.Manager
	if chosen == retrieval.MethodSemantic {
		manager = retrieval.NewSemanticIndex(embedder)
	} else {
		manager = retrieval.NewMultiKeyIndex()
	}

	model, err := llm.NewModel(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	tracker := metrics.NewTracker(cfg.CostPerInputToken, cfg.CostPerOutputToken, cfg.TargetLatencyMS)
	p := pipeline.New(manager, model, logger)

	for i := 0; i < pipelineRuns; i++ {
		state := p.Run(cmd.Context(), data)
		tracker.RecordRun(state.Latency[pipeline.StageTotal], state.Latency, state.Tokens.Input, state.Tokens.Output)
	}

	report := tracker.Report()
	return &report, nil
}

func init() {
	benchmarkCmd.Flags().IntVar(&benchmarkRuns, "runs", 0, "retrieval repetitions per query (default from config)")
	benchmarkCmd.Flags().IntVar(&pipelineRuns, "pipeline", 0, "additionally run N full pipeline invocations")
	rootCmd.AddCommand(benchmarkCmd)
}
