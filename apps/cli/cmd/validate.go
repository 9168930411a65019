package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
)

var validateCmd = &cobra.Command{
	Use:   "validate <suite|directory>...",
	Short: "Validate suite files without running them",
	Long: `Validate suite files for YAML and structural errors without executing them.

Examples:
  hitmatch validate checks/issues.yaml
  hitmatch validate ./checks/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitWith(ExitUsageError, fmt.Errorf("no suite files found"))
	}

	hasErrors := false
	for _, file := range files {
		s, err := suite.LoadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			if !isParseError(err) {
				return exitWith(ExitUsageError, err)
			}
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d checks)\n", file, len(s.Checks))
		}
	}

	if hasErrors {
		return exitWith(ExitParseError, nil)
	}

	return nil
}
