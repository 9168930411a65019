package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   = "dev"
	buildTime = "unknown"

	verboseFlag int // 0=off, 1=-v, 2=-vv

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hitmatch",
	Short: "Declarative matchers for web services and schemas.",
	Long: `hitmatch runs YAML suites of declarative matchers against a live
HTTP service or a SQLite schema: response matchers for status codes,
redirects, cookies and JSON bodies, and inclusion matchers that probe
which values a validation accepts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verboseFlag > 1 {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if verboseFlag > 0 {
			config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v for details and info logs, -vv for debug logs)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
