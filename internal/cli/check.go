package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fmchealth/insuragent/internal/model"
	"github.com/spf13/cobra"
)

var (
	checkMock    bool
	checkJSON    string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <field> <value>",
	Short: "Verify a single field value on its own",
	Long: `Check evaluates one field value without a surrounding case:
rule-engine short-circuit, clause retrieval, then language-model
adjudication with coverage-phrase parsing.

Field must be one of: complaint, symptoms, diagnosis, lab, pharmacy.

Example:
  insuragent check pharmacy "Panadol"
  insuragent check diagnosis "Hepatitis B" --mock`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkMock, "mock", false, "use deterministic mock collaborators (no API calls)")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", "output JSON path (default: stdout)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 1*time.Minute, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, err := parseFieldKind(args[0])
	if err != nil {
		return err
	}
	value := args[1]

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := buildConfig(checkMock)
	evaluator, _, err := buildEvaluator(ctx, cfg)
	if err != nil {
		return err
	}

	result := evaluator.VerifyField(ctx, kind, value)
	return writeJSON(result, checkJSON)
}

// parseFieldKind maps a CLI argument to a field kind
func parseFieldKind(name string) (model.FieldKind, error) {
	for _, kind := range model.EvaluationOrder() {
		if name == string(kind) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown field %q (expected one of: diagnosis, complaint, symptoms, lab, pharmacy)", name)
}
