package worker

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fmchealth/insuragent/internal/model"
)

// Verifier runs a full case evaluation
type Verifier interface {
	VerifyCase(ctx context.Context, caseID string, req model.CaseRequest) model.CaseDecision
}

// CaseJob is one case evaluation job
type CaseJob struct {
	CaseID   string
	Request  model.CaseRequest
	Verifier Verifier
}

// Execute runs the case through the verifier
func (j *CaseJob) Execute(ctx context.Context) Result {
	decision := j.Verifier.VerifyCase(ctx, j.CaseID, j.Request)
	return &CaseResult{CaseID: j.CaseID, Decision: decision}
}

// CaseResult is the outcome of a case job
type CaseResult struct {
	CaseID   string
	Decision model.CaseDecision
	Error    error
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates multiple cases concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// Case pairs an identifier with its request for batch submission
type Case struct {
	ID      string
	Request model.CaseRequest
}

// ProcessCases evaluates cases concurrently on the worker pool
func (b *BatchProcessor) ProcessCases(ctx context.Context, cases []Case) []*CaseResult {
	if len(cases) == 0 {
		return []*CaseResult{}
	}

	// Sized to the batch: every job and result fits in the buffers, so
	// submitting all cases before draining cannot block.
	pool := NewPoolSized(b.concurrency, len(cases))
	pool.Start()

	for _, c := range cases {
		pool.Submit(&CaseJob{
			CaseID:   c.ID,
			Request:  c.Request,
			Verifier: b.verifier,
		})
	}

	results := pool.Wait()

	caseResults := make([]*CaseResult, len(results))
	for i, result := range results {
		caseResults[i] = result.(*CaseResult)
	}
	return caseResults
}

// ProcessFile reads cases from a CSV file and evaluates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaseResult, error) {
	cases, err := ReadCasesFromCSV(filePath)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return b.ProcessCases(ctx, cases), nil
}

// columnAliases maps known CSV header spellings to canonical field names.
// Claim exports use payer-specific headers; the fallbacks cover the
// generic spellings.
var columnAliases = map[string]string{
	"chief_complaints":            "complaint",
	"symptoms":                    "symptoms",
	"diagnosis_description":       "diagnosis",
	"service_detail":              "lab",
	"payer_product_category_name": "pharmacy",

	"chief_complaint": "complaint",
	"complaints":      "complaint",
	"complaint":       "complaint",
	"symptom":         "symptoms",
	"diagnosis":       "diagnosis",
	"diagnosis_code":  "diagnosis",
	"lab":             "lab",
	"lab_test":        "lab",
	"pharmacy":        "pharmacy",
	"medication":      "pharmacy",
	"drug":            "pharmacy",
}

// ReadCasesFromCSV parses a CSV file into cases. Headers are matched
// case-insensitively through the alias table; missing columns become
// empty fields. A row without an id/case_id column gets its 1-based row
// number as the case ID.
func ReadCasesFromCSV(filePath string) ([]Case, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Column index per canonical field name, first alias hit wins
	fieldCols := map[string]int{}
	idCol := -1
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "id" || name == "case_id" {
			if idCol < 0 {
				idCol = i
			}
			continue
		}
		if canonical, ok := columnAliases[name]; ok {
			if _, taken := fieldCols[canonical]; !taken {
				fieldCols[canonical] = i
			}
		}
	}

	cell := func(record []string, col int) string {
		if col < 0 || col >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[col])
	}

	var cases []Case
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum+1, err)
		}
		rowNum++

		caseID := cell(record, idCol)
		if caseID == "" {
			caseID = strconv.Itoa(rowNum)
		}

		req := model.CaseRequest{}
		for canonical, col := range fieldCols {
			value := cell(record, col)
			switch canonical {
			case "complaint":
				req.Complaint = value
			case "symptoms":
				req.Symptoms = value
			case "diagnosis":
				req.Diagnosis = value
			case "lab":
				req.Lab = value
			case "pharmacy":
				req.Pharmacy = value
			}
		}

		cases = append(cases, Case{ID: caseID, Request: req})
	}

	return cases, nil
}
