// Package runner executes hitmatch suites and collects their results.
//
// It provides functionality for:
//   - Running request checks and their response matchers
//   - Running inclusion checks against HTTP and SQLite subjects
//   - Name and tag filters, skip/only markers and check dependencies
//   - Parallel execution when no check depends on another
//   - Request pacing with a token bucket rate limiter
//   - Variable resolution and values captured from responses
package runner
