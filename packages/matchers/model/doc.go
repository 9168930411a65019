// Package model provides matchers for attribute validations on models.
//
// EnsureInclusionOf asserts that an attribute accepts exactly an allow-list
// of values, given either as an explicit set (InArray) or as an integer range
// (InRange), and rejects values outside of it:
//
//	m := model.EnsureInclusionOf("priority").
//		InRange(1, 5).
//		WithLowMessage("too low").
//		WithHighMessage("too high")
//	matchers.Should(t, subject, m)
//
// Each probe assigns a value to the subject's attribute and validates it.
// The subject is left holding the last probe value.
package model
