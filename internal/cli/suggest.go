package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmchealth/insuragent/internal/engine"
	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/mode"
)

var (
	suggestMock    bool
	suggestJSON    string
	suggestTimeout time.Duration
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <item>",
	Short: "Suggest next steps for an excluded claim item",
	Long: `Suggest returns up to 3 practical alternatives or next steps for a
claim item that was excluded: fixed advice for common exclusions,
language-model suggestions otherwise.

Example:
  insuragent suggest "Vitamin D supplement"
  insuragent suggest "Teeth whitening" --mock`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().BoolVar(&suggestMock, "mock", false, "use the deterministic mock provider (no API calls)")
	suggestCmd.Flags().StringVar(&suggestJSON, "json", "", "output JSON path (default: stdout)")
	suggestCmd.Flags().DurationVar(&suggestTimeout, "timeout", 1*time.Minute, "overall suggestion timeout")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
	defer cancel()

	// No retrieval here, only the provider is needed
	cfg := buildConfig(suggestMock)
	provider, err := llm.NewProvider(cfg.LLM, cfg.RateLimiting, mode.NewState())
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	suggestions := engine.NewRecommender(provider).Suggestions(ctx, args[0])
	return writeJSON(suggestions, suggestJSON)
}
