package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "error"
	StatusSkipped Status = "skipped"
)

// CheckResult is the outcome of one check. Results holds one entry per
// matcher that reached a verdict.
type CheckResult struct {
	Name       string
	Kind       suite.CheckKind
	Status     Status
	SkipReason string
	Duration   time.Duration

	Method     string
	URL        string
	StatusCode int

	Results  []*matchers.Result
	Captures map[string]any

	// Error is set when Status is StatusErrored. Misconfigured tells a
	// matcher misconfiguration apart from a transport or setup failure.
	Error         error
	Misconfigured bool
}

func (c *CheckResult) Passed() bool {
	return c.Status == StatusPassed
}

// FailedResults returns the matcher results that did not pass.
func (c *CheckResult) FailedResults() []*matchers.Result {
	var failed []*matchers.Result
	for _, r := range c.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuiteResult is the outcome of one suite.
type SuiteResult struct {
	Name     string
	Path     string
	Checks   []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Errored  int
	Skipped  int
}

func (s *SuiteResult) add(c *CheckResult) {
	s.Checks = append(s.Checks, c)
	switch c.Status {
	case StatusPassed:
		s.Passed++
	case StatusFailed:
		s.Failed++
	case StatusErrored:
		s.Errored++
	case StatusSkipped:
		s.Skipped++
	}
}

func (s *SuiteResult) Total() int {
	return len(s.Checks)
}

// Misconfigured reports whether any check hit a matcher misconfiguration.
func (s *SuiteResult) Misconfigured() bool {
	for _, c := range s.Checks {
		if c.Misconfigured {
			return true
		}
	}
	return false
}

// RunResult aggregates the suites of one run.
type RunResult struct {
	ID        string
	StartedAt time.Time
	Suites    []*SuiteResult
	Duration  time.Duration
	Passed    int
	Failed    int
	Errored   int
	Skipped   int
}

// NewRunResult starts an empty run with a fresh ID.
func NewRunResult() *RunResult {
	return &RunResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

func (r *RunResult) Add(s *SuiteResult) {
	r.Suites = append(r.Suites, s)
	r.Passed += s.Passed
	r.Failed += s.Failed
	r.Errored += s.Errored
	r.Skipped += s.Skipped
}

func (r *RunResult) Total() int {
	return r.Passed + r.Failed + r.Errored + r.Skipped
}

func (r *RunResult) Misconfigured() bool {
	for _, s := range r.Suites {
		if s.Misconfigured() {
			return true
		}
	}
	return false
}

// Success reports whether nothing failed or errored.
func (r *RunResult) Success() bool {
	return r.Failed == 0 && r.Errored == 0
}
