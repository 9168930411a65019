package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.SuiteResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	title := result.Name
	if result.Path != "" && result.Path != result.Name {
		title = fmt.Sprintf("%s (%s)", result.Name, result.Path)
	}
	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+title))

	for _, c := range result.Checks {
		switch c.Status {
		case runner.StatusSkipped:
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), c.Name)
			if c.SkipReason != "" && c.SkipReason != "filtered out" {
				fmt.Fprintf(f.writer, " (%s)", c.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue

		case runner.StatusErrored:
			label := "error"
			if c.Misconfigured {
				label = "misconfigured"
			}
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), c.Name, red(fmt.Sprintf("(%s: %v)", label, c.Error)))
			continue
		}

		symbol := green("✓")
		if !c.Passed() {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, c.Name, cyan(fmt.Sprintf("(%dms)", c.Duration.Milliseconds())))

		if f.verbose && c.StatusCode != 0 {
			fmt.Fprintf(f.writer, "    %s %s -> %d\n", c.Method, c.URL, c.StatusCode)
		}

		for _, r := range c.FailedResults() {
			fmt.Fprintf(f.writer, "    %s %s\n", red("→"), r.Description)
			if r.Expected != nil || r.Actual != nil {
				fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(r.Expected, 100))
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(r.Actual, 100))
			}
			if r.Message != "" {
				fmt.Fprintf(f.writer, "      %s\n", r.Message)
			}
		}

		if f.verbose && len(c.Captures) > 0 {
			names := make([]string, 0, len(c.Captures))
			for name := range c.Captures {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(f.writer, "    Captures:\n")
			for _, name := range names {
				fmt.Fprintf(f.writer, "      %s = %v\n", name, c.Captures[name])
			}
		}
	}
}

// Flush prints the run summary.
func (f *ConsoleFormatter) Flush(run *runner.RunResult) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Checks: ")
	if run.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", run.Passed)))
	}
	if run.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", run.Failed)))
	}
	if run.Errored > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d errored", run.Errored)))
	}
	if run.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", run.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", run.Total())
	fmt.Fprintf(f.writer, "Time:   %dms\n", run.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitmatch"), version)
}
