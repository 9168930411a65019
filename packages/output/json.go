package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Errors   []string    `json:"errors,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total         int  `json:"total"`
	Passed        int  `json:"passed"`
	Failed        int  `json:"failed"`
	Errored       int  `json:"errored"`
	Skipped       int  `json:"skipped"`
	Misconfigured bool `json:"misconfigured,omitempty"`
}

// JSONCheck represents a single check result
type JSONCheck struct {
	Suite         string         `json:"suite"`
	File          string         `json:"file,omitempty"`
	Name          string         `json:"name"`
	Kind          string         `json:"kind"`
	Status        string         `json:"status"`
	SkipReason    string         `json:"skipReason,omitempty"`
	Duration      float64        `json:"duration"`
	Error         string         `json:"error,omitempty"`
	Misconfigured bool           `json:"misconfigured,omitempty"`
	Request       *JSONRequest   `json:"request,omitempty"`
	Results       []JSONResult   `json:"results,omitempty"`
	Captures      map[string]any `json:"captures,omitempty"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// JSONResult represents one matcher verdict
type JSONResult struct {
	Matcher     string `json:"matcher"`
	Description string `json:"description"`
	Subject     string `json:"subject,omitempty"`
	Passed      bool   `json:"passed"`
	Message     string `json:"message,omitempty"`
	Expected    any    `json:"expected,omitempty"`
	Actual      any    `json:"actual,omitempty"`
}

// JSONFormatter formats check results as JSON
type JSONFormatter struct {
	writer  io.Writer
	results []JSONCheck
	errors  []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONCheck, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.SuiteResult) {
	for _, c := range result.Checks {
		check := JSONCheck{
			Suite:         result.Name,
			File:          result.Path,
			Name:          c.Name,
			Kind:          string(c.Kind),
			Status:        string(c.Status),
			Duration:      float64(c.Duration.Milliseconds()),
			Misconfigured: c.Misconfigured,
		}

		if c.SkipReason != "" && c.SkipReason != "filtered out" {
			check.SkipReason = c.SkipReason
		}

		if c.Error != nil {
			check.Error = c.Error.Error()
		}

		if c.Method != "" {
			check.Request = &JSONRequest{
				Method:     c.Method,
				URL:        c.URL,
				StatusCode: c.StatusCode,
			}
		}

		if len(c.Results) > 0 {
			check.Results = make([]JSONResult, len(c.Results))
			for i, r := range c.Results {
				check.Results[i] = jsonResult(r)
			}
		}

		if len(c.Captures) > 0 {
			check.Captures = c.Captures
		}

		f.results = append(f.results, check)
	}
}

func jsonResult(r *matchers.Result) JSONResult {
	return JSONResult{
		Matcher:     r.Matcher,
		Description: r.Description,
		Subject:     r.Subject,
		Passed:      r.Passed,
		Message:     r.Message,
		Expected:    r.Expected,
		Actual:      r.Actual,
	}
}

// FormatError records errors that happened outside any check, such as a
// suite that failed to load.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(run *runner.RunResult) error {
	output := JSONOutput{
		RunID: run.ID,
		Summary: JSONSummary{
			Total:         run.Total(),
			Passed:        run.Passed,
			Failed:        run.Failed,
			Errored:       run.Errored,
			Skipped:       run.Skipped,
			Misconfigured: run.Misconfigured(),
		},
		Checks:   f.results,
		Errors:   f.errors,
		Duration: float64(run.Duration.Milliseconds()),
		Time:     run.StartedAt.Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
