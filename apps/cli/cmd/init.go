package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/config"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitmatch project",
	Long: `Initialize a new hitmatch project in the current directory.

This creates:
  - hitmatch.config.json  - Configuration file
  - example.yaml          - Example suite

Examples:
  hitmatch init
  hitmatch init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, "hitmatch.config.json")
	exampleFile := filepath.Join(dir, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return exitWith(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://localhost:3000"
	cfg.Headers = map[string]string{"User-Agent": "hitmatch/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	data, err := marshalSuite(exampleSuite())
	if err != nil {
		return fmt.Errorf("failed to render example suite: %w", err)
	}
	if err := os.WriteFile(exampleFile, data, 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitmatch project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitmatch run example.yaml' to execute the example checks.\n")

	return nil
}

func marshalSuite(s *suite.Suite) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exampleSuite() *suite.Suite {
	allowNil := false
	return &suite.Suite{
		Name: "example",
		Variables: map[string]any{
			"title": "Example issue",
		},
		Checks: []*suite.Check{
			{
				Name: "health",
				Tags: []string{"smoke"},
				Request: &suite.Request{
					URL: "/health",
				},
				Expect: &suite.Expect{
					Status: "success",
				},
			},
			{
				Name: "create issue",
				Tags: []string{"crud"},
				Request: &suite.Request{
					Method: "POST",
					URL:    "/issues",
					Body:   map[string]any{"title": "{{title}}"},
				},
				Expect: &suite.Expect{
					Status:      "created",
					ContentType: "application/json",
					JSON: map[string]any{
						"id":    nil,
						"title": "{{title}}",
					},
				},
				Capture: map[string]string{"issueId": "id"},
			},
			{
				Name:    "show issue",
				Tags:    []string{"crud"},
				Depends: []string{"create issue"},
				Request: &suite.Request{
					URL: "/issues/{{issueId}}",
				},
				Expect: &suite.Expect{
					Status: "ok",
				},
			},
			{
				Name: "issue state",
				Tags: []string{"validation"},
				Inclusion: &suite.Inclusion{
					Attribute: "state",
					In:        []any{"open", "closed"},
					AllowNil:  &allowNil,
					Subject: suite.Subject{
						HTTP: &suite.HTTPSubject{
							URL:        "/issues/validate",
							Attributes: map[string]any{"title": "{{title}}"},
						},
					},
				},
			},
			{
				Name: "issue priority",
				Tags: []string{"validation", "schema"},
				Inclusion: &suite.Inclusion{
					Attribute: "priority",
					Range:     &suite.Range{Min: 1, Max: 5},
					Subject: suite.Subject{
						SQLite: &suite.SQLiteSubject{
							Database: "sqlite::memory:",
							Setup:    "CREATE TABLE issues (\n  title TEXT NOT NULL,\n  priority INTEGER CHECK (priority BETWEEN 1 AND 5)\n);\n",
							Table:    "issues",
							Row:      map[string]any{"title": "{{title}}"},
						},
					},
				},
			},
		},
	}
}
