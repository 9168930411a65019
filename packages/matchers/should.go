package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Should evaluates m against subject and fails t when the subject does not
// match. A misconfigured matcher stops the test immediately.
func Should[S any](t testing.TB, subject S, m Matcher[S], msgAndArgs ...any) bool {
	t.Helper()
	res, err := m.Evaluate(subject)
	if err != nil {
		require.NoError(t, err, "matcher is misconfigured")
		return false
	}
	if res.Passed {
		return true
	}
	return assert.Fail(t, "Expected to "+m.Description(), append([]any{res.Message}, msgAndArgs...)...)
}

// ShouldNot is Should for the negated matcher.
func ShouldNot[S any](t testing.TB, subject S, m Matcher[S], msgAndArgs ...any) bool {
	t.Helper()
	return Should(t, subject, Not(m), msgAndArgs...)
}
