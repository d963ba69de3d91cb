package cli

import (
	"encoding/json"
	"fmt"

	"github.com/nudged-ai/nudged/internal/config"
	"github.com/nudged-ai/nudged/internal/llm"
	"github.com/nudged-ai/nudged/internal/pipeline"
	"github.com/nudged-ai/nudged/internal/retrieval"
	"github.com/nudged-ai/nudged/internal/userdata"
	"github.com/spf13/cobra"
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge <data.json>",
	Short: "Generate a nudge from a user-data snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := userdata.Load(args[0])
		if err != nil {
			return err
		}

		manager, err := newManager(cfg)
		if err != nil {
			return err
		}

		model, err := llm.NewModel(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		state := pipeline.New(manager, model, logger).Run(cmd.Context(), data)

		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// newManager builds the retrieval manager selected by configuration.
func newManager(cfg config.Config) (retrieval.Manager, error) {
	switch cfg.Strategy {
	case config.StrategySemantic:
		embedder, err := llm.NewEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		return retrieval.NewSemanticIndex(embedder), nil
	case config.StrategyMultiKey, "":
		return retrieval.NewMultiKeyIndex(), nil
	default:
		return nil, fmt.Errorf("unknown retrieval strategy: %s", cfg.Strategy)
	}
}

func init() {
	rootCmd.AddCommand(nudgeCmd)
}
