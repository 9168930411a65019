// Package output provides formatters for displaying check results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//
// Each formatter receives one SuiteResult at a time through FormatResult
// and writes its summary or accumulated document when the run is flushed.
package output
