package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
)

var listCmd = &cobra.Command{
	Use:   "list <suite|directory>...",
	Short: "List all checks in suite files",
	Long: `List all checks defined in .yaml or .yml suite files.

Examples:
  hitmatch list checks/issues.yaml
  hitmatch list ./checks/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitWith(ExitUsageError, fmt.Errorf("no suite files found"))
	}

	failed := false
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", file, err)
			failed = true
			continue
		}

		// Parsed but not validated, so an unfinished suite can still be listed.
		s, err := suite.Parse(data, file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			failed = true
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%s):\n", s.Name, file)
		for _, c := range s.Checks {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s [%s]\n", c.Name, checkSummary(c))
			if len(c.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(c.Tags, ", "))
			}
			if len(c.Depends) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    depends: %s\n", strings.Join(c.Depends, ", "))
			}
		}
	}

	if failed {
		return exitWith(ExitParseError, nil)
	}
	return nil
}

func checkSummary(c *suite.Check) string {
	switch {
	case c.Inclusion != nil:
		return "inclusion of " + c.Inclusion.Attribute
	case c.Request != nil:
		return c.Request.MethodOrDefault() + " " + c.Request.URL
	default:
		return string(c.Kind())
	}
}
