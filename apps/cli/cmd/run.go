package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/config"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/env"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <suite|directory>...",
	Short: "Run matcher suites",
	Long: `Run the checks defined in .yaml or .yml suite files.

Examples:
  hitmatch run checks/issues.yaml
  hitmatch run ./checks/ --tags smoke
  hitmatch run ./checks/ --name "create*" --bail
  hitmatch run ./checks/ --base-url http://localhost:3000 --rate 20
  hitmatch run ./checks/ --output junit --output-file report.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFileFlag     string
	configFlag      string
	baseURLFlag     string
	nameFlag        string
	tagsFlag        string
	bailFlag        bool
	timeoutFlag     string
	rateFlag        float64
	noColorFlag     bool
	dryRunFlag      bool
	outputFlag      string
	outputFileFlag  string
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITMATCH_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITMATCH_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITMATCH_CONFIG", ""), "Path to config file (env: HITMATCH_CONFIG)")
	runCmd.Flags().StringVar(&baseURLFlag, "base-url", getEnvString("HITMATCH_BASE_URL", ""), "Base URL overriding the suites' baseUrl (env: HITMATCH_BASE_URL)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks matching name pattern (leading or trailing *)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("HITMATCH_TAGS", ""), "Run only checks with specified tags (comma-separated) (env: HITMATCH_TAGS)")

	// Output flags
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITMATCH_NO_COLOR", false), "Disable colored output (env: HITMATCH_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITMATCH_OUTPUT", ""), "Output format: console, json, junit (env: HITMATCH_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HITMATCH_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITMATCH_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HITMATCH_BAIL", false), "Stop on first failure (env: HITMATCH_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITMATCH_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HITMATCH_TIMEOUT)")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", getEnvFloat("HITMATCH_RATE", 0), "Maximum requests per second, 0 for unlimited (env: HITMATCH_RATE)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Load suites and show what would run without executing")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("HITMATCH_PARALLEL", false), "Run checks in parallel (when no dependencies) (env: HITMATCH_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("HITMATCH_CONCURRENCY", runner.DefaultConcurrency), "Number of concurrent checks when running in parallel (env: HITMATCH_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run checks")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HITMATCH_PROXY", ""), "Proxy URL for HTTP requests (env: HITMATCH_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITMATCH_INSECURE", false), "Disable SSL certificate validation (env: HITMATCH_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.SuiteResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that write once the run is over
type Flushable interface {
	Flush(run *runner.RunResult) error
}

// runSettings is the outcome of merging the config file, flags and
// environment.
type runSettings struct {
	runner     *runner.Config
	output     string
	outputFile string
	verbose    bool
	noColor    bool
}

// flagOverrides turns the run flags into a config layered over the file
// config. Zero values leave the file config alone.
func flagOverrides() (*config.Config, error) {
	o := &config.Config{
		BaseURL: baseURLFlag,
		EnvFile: envFileFlag,
		Rate:    rateFlag,
		Proxy:   proxyFlag,
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		o.Timeout = int(d.Milliseconds())
	}
	if outputFlag != "" {
		o.Reporters = []string{strings.ToLower(outputFlag)}
	}
	if bailFlag {
		o.Bail = config.BoolPtr(true)
	}
	if insecureFlag {
		o.ValidateSSL = config.BoolPtr(false)
	}
	if noColorFlag {
		o.NoColor = config.BoolPtr(true)
	}
	if verboseFlag > 0 {
		o.Verbose = config.BoolPtr(true)
	}
	return o, nil
}

func loadSettings() (*runSettings, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	overrides, err := flagOverrides()
	if err != nil {
		return nil, err
	}
	cfg := fileConfig.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	variables := env.MergeVariables(cfg.Variables, env.LoadSystemEnv("HITMATCH_VAR_"))
	if cfg.EnvFile != "" {
		dotenv, err := env.LoadAndExportDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		variables = env.MergeVariables(variables, env.StringVariables(dotenv))
	}

	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	}

	format := "console"
	if len(cfg.Reporters) > 0 {
		format = cfg.Reporters[0]
	}

	outputFile := outputFileFlag
	if outputFile == "" && cfg.OutputDir != "" && format != "console" {
		ext := ".json"
		if format == "junit" {
			ext = ".xml"
		}
		outputFile = filepath.Join(cfg.OutputDir, "hitmatch-report"+ext)
	}

	return &runSettings{
		runner: &runner.Config{
			BaseURL:         cfg.BaseURL,
			Timeout:         cfg.TimeoutDuration(),
			Rate:            cfg.Rate,
			FollowRedirects: cfg.GetFollowRedirects(),
			MaxRedirects:    cfg.MaxRedirects,
			Insecure:        !cfg.GetValidateSSL(),
			Proxy:           cfg.Proxy,
			Headers:         cfg.Headers,
			Variables:       variables,
			Bail:            cfg.GetBail(),
			NameFilter:      nameFlag,
			TagsFilter:      tagsFilter,
			Parallel:        parallelFlag,
			Concurrency:     concurrencyFlag,
			Logger:          logger,
		},
		output:     format,
		outputFile: outputFile,
		verbose:    cfg.GetVerbose(),
		noColor:    cfg.GetNoColor(),
	}, nil
}

func newFormatter(s *runSettings, w io.Writer) Formatter {
	switch s.output {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	case "junit":
		return output.NewJUnitFormatter(output.JUnitWithWriter(w))
	default: // "console"
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(s.verbose),
			output.WithNoColor(s.noColor),
		)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return exitWith(ExitConfigError, err)
	}

	files, err := collectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitWith(ExitUsageError, fmt.Errorf("no suite files (%s) found", strings.Join(suite.Extensions, ", ")))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.NewRunner(settings.runner)
	defer r.Close()

	code, err := runOnce(ctx, cmd, r, settings, files)
	if !watchFlag {
		if code != ExitSuccess {
			return exitWith(code, err)
		}
		return nil
	}

	return watch(ctx, cmd, args, func() {
		fmt.Fprintf(cmd.OutOrStdout(), "\nRe-running checks...\n\n")
		files, err := collectFiles(args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		_, _ = runOnce(ctx, cmd, r, settings, files)
	})
}

// runOnce loads every suite, runs them and writes the report. Suites that
// fail to load are reported and nothing runs.
func runOnce(ctx context.Context, cmd *cobra.Command, r *runner.Runner, s *runSettings, files []string) (int, error) {
	w := cmd.OutOrStdout()
	if s.outputFile != "" {
		if dir := filepath.Dir(s.outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return ExitConfigError, fmt.Errorf("cannot create output directory: %w", err)
			}
		}
		f, err := os.Create(s.outputFile)
		if err != nil {
			return ExitConfigError, fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	formatter := newFormatter(s, w)
	formatter.FormatHeader(version)

	suites, loadErrs := loadSuites(files)
	if len(loadErrs) > 0 {
		for _, err := range loadErrs {
			formatter.FormatError(err)
		}
		if flushable, ok := formatter.(Flushable); ok {
			run := runner.NewRunResult()
			if err := flushable.Flush(run); err != nil {
				return ExitCheckFailure, fmt.Errorf("error writing output: %w", err)
			}
		}
		return ExitParseError, nil
	}

	if dryRunFlag {
		for _, st := range suites {
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s (%d checks)\n", st.Name, len(st.Checks))
		}
		return ExitSuccess, nil
	}

	run := r.Run(ctx, suites)
	for _, result := range run.Suites {
		formatter.FormatResult(result)
	}

	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(run); err != nil {
			return ExitCheckFailure, fmt.Errorf("error writing output: %w", err)
		}
	}

	logger.Debug("run reported",
		zap.String("run_id", run.ID),
		zap.String("output", s.output),
		zap.String("output_file", s.outputFile))
	return runExitCode(run), nil
}

func loadSuites(files []string) ([]*suite.Suite, []error) {
	var suites []*suite.Suite
	var errs []error
	for _, file := range files {
		s, err := suite.LoadFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		suites = append(suites, s)
	}
	return suites, errs
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && suite.IsSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if suite.IsSuiteFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

// isParseError reports whether err came from loading a suite.
func isParseError(err error) bool {
	var parseErr *suite.ParseError
	var validationErr *suite.ValidationError
	return errors.As(err, &parseErr) || errors.As(err, &validationErr)
}
