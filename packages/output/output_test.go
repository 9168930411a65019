package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

func sampleRun() (*runner.RunResult, *runner.SuiteResult) {
	failing := matchers.Fail("respond_with", "response", "respond with ok",
		"expected response to be a %d, but was %d", 200, 404).WithValues(200, 404)

	sr := &runner.SuiteResult{
		Name:     "issues",
		Path:     "checks/issues.yaml",
		Duration: 40 * time.Millisecond,
		Checks: []*runner.CheckResult{
			{
				Name:       "create issue",
				Kind:       suite.KindRequest,
				Status:     runner.StatusPassed,
				Duration:   12 * time.Millisecond,
				Method:     "POST",
				URL:        "http://localhost/issues",
				StatusCode: 201,
				Results:    []*matchers.Result{matchers.Pass("respond_with", "response", "respond with created")},
				Captures:   map[string]any{"issueId": 7},
			},
			{
				Name:       "show issue",
				Kind:       suite.KindRequest,
				Status:     runner.StatusFailed,
				Method:     "GET",
				URL:        "http://localhost/issues/8",
				StatusCode: 404,
				Results:    []*matchers.Result{failing},
			},
			{
				Name:          "state inclusion",
				Kind:          suite.KindInclusion,
				Status:        runner.StatusErrored,
				Error:         fmt.Errorf("ensure inclusion of state: %w", matchers.ErrNoConstraint),
				Misconfigured: true,
			},
			{
				Name:       "flaky",
				Kind:       suite.KindRequest,
				Status:     runner.StatusSkipped,
				SkipReason: "upstream down",
			},
		},
		Passed:  1,
		Failed:  1,
		Errored: 1,
		Skipped: 1,
	}

	run := runner.NewRunResult()
	run.Add(sr)
	run.Duration = 50 * time.Millisecond
	return run, sr
}

func TestConsoleFormatter(t *testing.T) {
	run, sr := sampleRun()

	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatHeader("1.2.3")
	f.FormatResult(sr)
	require.NoError(t, f.Flush(run))

	out := buf.String()
	assert.Contains(t, out, "hitmatch 1.2.3")
	assert.Contains(t, out, "Running: issues (checks/issues.yaml)")
	assert.Contains(t, out, "✓ create issue (12ms)")
	assert.Contains(t, out, "POST http://localhost/issues -> 201")
	assert.Contains(t, out, "issueId = 7")
	assert.Contains(t, out, "✗ show issue")
	assert.Contains(t, out, "→ respond with ok")
	assert.Contains(t, out, "Expected: 200")
	assert.Contains(t, out, "Actual:   404")
	assert.Contains(t, out, "expected response to be a 200, but was 404")
	assert.Contains(t, out, "x state inclusion (misconfigured:")
	assert.Contains(t, out, "- flaky (upstream down)")
	assert.Contains(t, out, "1 passed, 1 failed, 1 errored, 1 skipped, 4 total")
	assert.Contains(t, out, "Time:   50ms")
}

func TestConsoleFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"array", []any{1, 2}, "[array with 2 items]"},
		{"object", map[string]any{"a": 1}, "{object with 1 keys}"},
		{"string map", map[string]string{"a": "b"}, "{map with 1 entries}"},
		{"scalar", 42, "42"},
		{"truncated", strings.Repeat("x", 12), "xxxxxxxxxx..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value, 10))
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	run, sr := sampleRun()

	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatHeader("1.2.3")
	f.FormatResult(sr)
	f.FormatError(errors.New("parsing broken.yaml: empty suite"))
	require.NoError(t, f.Flush(run))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, run.ID, out.RunID)
	assert.Equal(t, JSONSummary{Total: 4, Passed: 1, Failed: 1, Errored: 1, Skipped: 1, Misconfigured: true}, out.Summary)
	assert.Equal(t, []string{"parsing broken.yaml: empty suite"}, out.Errors)
	require.Len(t, out.Checks, 4)

	create := out.Checks[0]
	assert.Equal(t, "issues", create.Suite)
	assert.Equal(t, "checks/issues.yaml", create.File)
	assert.Equal(t, "request", create.Kind)
	assert.Equal(t, "passed", create.Status)
	assert.Equal(t, &JSONRequest{Method: "POST", URL: "http://localhost/issues", StatusCode: 201}, create.Request)
	assert.Equal(t, float64(7), create.Captures["issueId"])

	show := out.Checks[1]
	require.Len(t, show.Results, 1)
	assert.False(t, show.Results[0].Passed)
	assert.Equal(t, "respond_with", show.Results[0].Matcher)
	assert.Equal(t, float64(404), show.Results[0].Actual)

	inclusion := out.Checks[2]
	assert.Equal(t, "inclusion", inclusion.Kind)
	assert.True(t, inclusion.Misconfigured)
	assert.Contains(t, inclusion.Error, "no allowed values")
	assert.Nil(t, inclusion.Request)

	assert.Equal(t, "upstream down", out.Checks[3].SkipReason)
}

func TestJUnitFormatter(t *testing.T) {
	run, sr := sampleRun()

	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(sr)
	require.NoError(t, f.Flush(run))

	require.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	var out JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "hitmatch", out.Name)
	assert.Equal(t, run.ID, out.ID)
	assert.Equal(t, 4, out.Tests)
	assert.Equal(t, 1, out.Failures)
	assert.Equal(t, 1, out.Errors)
	assert.Equal(t, 1, out.Skipped)

	require.Len(t, out.TestSuites, 1)
	cases := out.TestSuites[0].TestCases
	require.Len(t, cases, 4)

	assert.Equal(t, "checks/issues.yaml", cases[0].ClassName)
	assert.Nil(t, cases[0].Failure)
	require.NotNil(t, cases[1].Failure)
	assert.Contains(t, cases[1].Failure.Content, "respond with ok: expected response to be a 200, but was 404")
	require.NotNil(t, cases[2].Error)
	assert.Equal(t, "Misconfiguration", cases[2].Error.Type)
	require.NotNil(t, cases[3].Skipped)
	assert.Equal(t, "upstream down", cases[3].Skipped.Message)
}
