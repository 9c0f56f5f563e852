package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fmchealth/insuragent/internal/model"
	"github.com/fmchealth/insuragent/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchOutput  string
	batchMock    bool
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.csv>",
	Short: "Verify multiple claim cases from a CSV file in parallel",
	Long: `Batch processes multiple cases concurrently:
- Read cases from a CSV file (payer export or generic column names)
- Map columns to the five clinical fields
- Evaluate cases in parallel with configurable worker count
- Write all case decisions as one JSON array

Example:
  insuragent batch cases.csv
  insuragent batch cases.csv --concurrency 8 --json decisions.json
  insuragent batch cases.csv --mock`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutput, "json", "", "output JSON path (default: stdout)")
	batchCmd.Flags().BoolVar(&batchMock, "mock", false, "use deterministic mock collaborators (no API calls)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  InsurAgent Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg := buildConfig(batchMock)
	cfg.Concurrency.Workers = concurrency

	evaluator, _, err := buildEvaluator(ctx, cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(evaluator, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading cases from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d cases with %d workers\n", len(results), concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	allowed := 0
	excluded := 0
	decisions := make([]model.CaseDecision, 0, len(results))
	for _, result := range results {
		decisions = append(decisions, result.Decision)
		if result.Decision.FinalDecision == model.DecisionAllowed {
			allowed++
			fmt.Fprintf(os.Stderr, "✓ case %s: Allowed (%d%%)\n", result.CaseID, result.Decision.ApprovalProbability)
		} else {
			excluded++
			fmt.Fprintf(os.Stderr, "✗ case %s: Excluded (%d%%)\n", result.CaseID, result.Decision.ApprovalProbability)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d cases\n", len(results))
	fmt.Fprintf(os.Stderr, "  Allowed:   %d\n", allowed)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "\n")

	return writeJSON(decisions, batchOutput)
}
