package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/env"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/http"
)

const (
	// DefaultConcurrency is the default number of concurrent checks in parallel mode
	DefaultConcurrency = 5
)

type Runner struct {
	client *http.Client
	config *Config
	logger *zap.Logger
}

// Config controls a Runner. BaseURL, when set, takes precedence over the
// suites' own baseUrl.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	Rate            float64 // requests per second, 0 = unlimited
	FollowRedirects bool
	MaxRedirects    int
	Insecure        bool
	Proxy           string
	Headers         map[string]string
	Variables       map[string]any
	Bail            bool
	NameFilter      string
	TagsFilter      []string
	Parallel        bool
	Concurrency     int

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Client replaces the client built from the fields above.
	Client *http.Client
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := cfg.Client
	if client == nil {
		clientOpts := []http.ClientOption{
			http.WithFollowRedirects(cfg.FollowRedirects),
			http.WithValidateSSL(!cfg.Insecure),
		}
		if cfg.Timeout > 0 {
			clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
		}
		if cfg.MaxRedirects > 0 {
			clientOpts = append(clientOpts, http.WithMaxRedirects(cfg.MaxRedirects))
		}
		if cfg.Proxy != "" {
			clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
		}
		if cfg.Rate > 0 {
			clientOpts = append(clientOpts, http.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Rate), 1)))
		}
		client = http.NewClient(clientOpts...)
	}

	return &Runner{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Close releases pooled connections.
func (r *Runner) Close() {
	r.client.CloseIdleConnections()
}

// Run executes suites in order. With Bail set it stops after the first
// suite that has a failing or erroring check.
func (r *Runner) Run(ctx context.Context, suites []*suite.Suite) *RunResult {
	run := NewRunResult()
	r.logger.Info("run started", zap.String("run_id", run.ID), zap.Int("suites", len(suites)))

	for _, s := range suites {
		result, err := r.RunSuite(ctx, s)
		if err != nil {
			result = &SuiteResult{Name: s.Name, Path: s.Path}
			result.add(&CheckResult{Name: s.Name, Status: StatusErrored, Error: err})
		}
		run.Add(result)
		if r.config.Bail && (result.Failed > 0 || result.Errored > 0) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	run.Duration = time.Since(run.StartedAt)
	r.logger.Info("run finished",
		zap.String("run_id", run.ID),
		zap.Int("passed", run.Passed),
		zap.Int("failed", run.Failed),
		zap.Int("errored", run.Errored),
		zap.Int("skipped", run.Skipped),
		zap.Duration("duration", run.Duration),
	)
	return run
}

// RunFile loads a suite file and runs it.
func (r *Runner) RunFile(ctx context.Context, path string) (*SuiteResult, error) {
	s, err := suite.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return r.RunSuite(ctx, s)
}

// suiteRun carries the per-suite state shared by its checks.
type suiteRun struct {
	suite    *suite.Suite
	baseURL  string
	resolver *env.Resolver
	logger   *zap.Logger
}

func (r *Runner) RunSuite(ctx context.Context, s *suite.Suite) (*SuiteResult, error) {
	start := time.Now()
	result := &SuiteResult{Name: s.Name, Path: s.Path}

	ordered, err := topologicalSort(s.Checks)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}

	sr := &suiteRun{
		suite:    s,
		baseURL:  s.BaseURL,
		resolver: env.NewResolver(),
		logger:   r.logger.With(zap.String("suite", s.Name)),
	}
	if r.config.BaseURL != "" {
		sr.baseURL = r.config.BaseURL
	}
	sugar := sr.logger.Sugar()
	sr.resolver.SetWarnFunc(func(format string, args ...any) {
		sugar.Warnf(format, args...)
	})
	sr.resolver.SetVariables(r.config.Variables)
	if vars, ok := sr.resolver.ResolveValue(anyMap(s.Variables)).(map[string]any); ok {
		sr.resolver.SetVariables(vars)
	}

	hasOnly := false
	for _, c := range ordered {
		if c.Only {
			hasOnly = true
			break
		}
	}

	var runnable []*suite.Check
	for _, c := range ordered {
		if !r.shouldRun(c, hasOnly) {
			result.add(skipped(c, "filtered out"))
			continue
		}
		if c.Skip != "" {
			result.add(skipped(c, c.Skip))
			continue
		}
		runnable = append(runnable, c)
	}

	if r.config.Parallel && !hasDependencies(runnable) {
		for _, cr := range r.runParallel(ctx, sr, runnable) {
			result.add(cr)
		}
	} else {
		executed := make(map[string]*CheckResult)
		for _, c := range runnable {
			if ctx.Err() != nil {
				result.add(skipped(c, "canceled"))
				continue
			}
			if dependencyFailed(c, executed) {
				cr := skipped(c, "dependency failed")
				executed[c.Name] = cr
				result.add(cr)
				continue
			}

			cr := r.runCheck(ctx, sr, c)
			executed[c.Name] = cr
			result.add(cr)

			if r.config.Bail && (cr.Status == StatusFailed || cr.Status == StatusErrored) {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runParallel(ctx context.Context, sr *suiteRun, checks []*suite.Check) []*CheckResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*CheckResult, len(checks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, c := range checks {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, check *suite.Check) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = r.runCheck(ctx, sr, check)
		}(i, c)
	}

	wg.Wait()
	return results
}

func (r *Runner) runCheck(ctx context.Context, sr *suiteRun, c *suite.Check) *CheckResult {
	logger := sr.logger.With(zap.String("check", c.Name), zap.String("kind", string(c.Kind())))
	logger.Debug("check started")

	start := time.Now()
	var cr *CheckResult
	if c.Kind() == suite.KindInclusion {
		cr = r.runInclusion(ctx, sr, c)
	} else {
		cr = r.runRequest(ctx, sr, c)
	}
	cr.Duration = time.Since(start)

	fields := []zap.Field{zap.String("status", string(cr.Status)), zap.Duration("duration", cr.Duration)}
	if cr.Error != nil {
		fields = append(fields, zap.Error(cr.Error), zap.Bool("misconfigured", cr.Misconfigured))
		logger.Warn("check errored", fields...)
	} else {
		logger.Debug("check finished", fields...)
	}
	return cr
}

func skipped(c *suite.Check, reason string) *CheckResult {
	return &CheckResult{
		Name:       c.Name,
		Kind:       c.Kind(),
		Status:     StatusSkipped,
		SkipReason: reason,
	}
}

func (r *Runner) shouldRun(c *suite.Check, hasOnly bool) bool {
	if hasOnly && !c.Only {
		return false
	}

	if r.config.NameFilter != "" && !matchesPattern(c.Name, r.config.NameFilter) {
		return false
	}

	if len(r.config.TagsFilter) > 0 && !hasAnyTag(c, r.config.TagsFilter) {
		return false
	}

	return true
}

func hasDependencies(checks []*suite.Check) bool {
	for _, c := range checks {
		if len(c.Depends) > 0 {
			return true
		}
	}
	return false
}

func dependencyFailed(c *suite.Check, executed map[string]*CheckResult) bool {
	for _, dep := range c.Depends {
		if res, ok := executed[dep]; ok && !res.Passed() {
			return true
		}
	}
	return false
}

// topologicalSort orders checks so that dependencies run first. Checks
// with no ordering constraint between them keep their file order.
func topologicalSort(checks []*suite.Check) ([]*suite.Check, error) {
	index := make(map[string]int, len(checks))
	for i, c := range checks {
		index[c.Name] = i
	}

	inDegree := make([]int, len(checks))
	dependents := make([][]int, len(checks))
	for i, c := range checks {
		for _, dep := range c.Depends {
			j, ok := index[dep]
			if !ok {
				continue
			}
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	sorted := make([]*suite.Check, 0, len(checks))
	done := make([]bool, len(checks))
	for len(sorted) < len(checks) {
		progressed := false
		for i, c := range checks {
			if done[i] || inDegree[i] > 0 {
				continue
			}
			done[i] = true
			sorted = append(sorted, c)
			for _, d := range dependents[i] {
				inDegree[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, fmt.Errorf("circular dependency detected in checks")
		}
	}
	return sorted, nil
}

// matchesPattern supports a leading and/or trailing * wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	leading := strings.HasPrefix(pattern, "*")
	trailing := strings.HasSuffix(pattern, "*")
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")

	switch {
	case leading && trailing:
		return strings.Contains(name, core)
	case leading:
		return strings.HasSuffix(name, core)
	case trailing:
		return strings.HasPrefix(name, core)
	default:
		return name == pattern
	}
}

func hasAnyTag(c *suite.Check, filters []string) bool {
	for _, filter := range filters {
		if c.HasTag(filter) {
			return true
		}
	}
	return false
}

func anyMap(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
