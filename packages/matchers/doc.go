// Package matchers provides the shared contract for hitmatch matchers.
//
// A matcher is configured up front, then evaluated against a subject:
//
//	m := model.EnsureInclusionOf("state").InArray("open", "resolved", "unresolved")
//	matchers.Should(t, subject, m)
//
// Evaluate distinguishes two outcomes. A Result with Passed == false is an
// ordinary test failure. A non-nil error means the matcher itself is
// misconfigured (see the Err* values) and no verdict could be reached.
package matchers
