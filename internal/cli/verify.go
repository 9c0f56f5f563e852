package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fmchealth/insuragent/internal/model"
	"github.com/spf13/cobra"
)

var (
	caseID        string
	complaint     string
	symptoms      string
	diagnosis     string
	lab           string
	pharmacy      string
	mockMode      bool
	outJSON       string
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single claim case against the policy exclusion corpus",
	Long: `Verify evaluates the five clinical fields of one claim case:
- Retrieve candidate policy clauses for each provided field
- Apply deterministic exclusion rules (hepatitis, vitamin D, brand/strength)
- Adjudicate remaining fields with the language model
- Check clinical coherence across fields
- Aggregate everything into a final decision with approval probability

Empty fields are treated as "no data" and never cause an error.

Example:
  insuragent verify --diagnosis "gastritis" --pharmacy "Procid 20 mg"
  insuragent verify --pharmacy "Vitamin D" --json result.json
  insuragent verify --diagnosis "bronchitis" --pharmacy "Amoxicillin 500mg for 15 days" --mock`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&caseID, "case-id", "case-1", "case identifier carried into the output")
	verifyCmd.Flags().StringVar(&complaint, "complaint", "", "chief complaint text")
	verifyCmd.Flags().StringVar(&symptoms, "symptoms", "", "symptoms text")
	verifyCmd.Flags().StringVar(&diagnosis, "diagnosis", "", "diagnosis text")
	verifyCmd.Flags().StringVar(&lab, "lab", "", "lab/investigations text")
	verifyCmd.Flags().StringVar(&pharmacy, "pharmacy", "", "pharmacy/medication text")
	verifyCmd.Flags().BoolVar(&mockMode, "mock", false, "use deterministic mock collaborators (no API calls)")
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg := buildConfig(mockMode)
	evaluator, _, err := buildEvaluator(ctx, cfg)
	if err != nil {
		return err
	}

	req := model.CaseRequest{
		Complaint: complaint,
		Symptoms:  symptoms,
		Diagnosis: diagnosis,
		Lab:       lab,
		Pharmacy:  pharmacy,
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying case %s\n", caseID)
	}

	decision := evaluator.VerifyCase(ctx, caseID, req)

	if verbose {
		fmt.Fprintf(os.Stderr, "Case %s: %s with probability %d%%\n",
			decision.CaseID, decision.FinalDecision, decision.ApprovalProbability)
	}

	return writeJSON(decision, outJSON)
}

// writeJSON renders v as indented JSON to the given path, or stdout when
// the path is empty.
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	}
	return nil
}
