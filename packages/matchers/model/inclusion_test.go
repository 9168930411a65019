package model

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issueStates = []any{"open", "resolved", "unresolved"}

type issue struct {
	State string `json:"state"`
}

type nullableIssue struct {
	State *string `json:"state"`
}

type task struct {
	Priority int     `json:"priority"`
	Weight   float64 `json:"weight"`
}

// issueSubject validates that state is one of accepted. Blank states pass
// when allowBlank is set.
func issueSubject(t *testing.T, allowBlank bool, accepted ...string) (*issue, validation.Validatable) {
	t.Helper()
	is := &issue{}
	s, err := validation.NewStructSubject(is, func() validation.Errors {
		errs := validation.Errors{}
		if allowBlank && strings.TrimSpace(is.State) == "" {
			return errs
		}
		if !slices.Contains(accepted, is.State) {
			errs.Add("state", validation.MessageInclusion)
		}
		return errs
	})
	require.NoError(t, err)
	return is, s
}

func nullableIssueSubject(t *testing.T, allowNil bool) validation.Validatable {
	t.Helper()
	is := &nullableIssue{}
	s, err := validation.NewStructSubject(is, func() validation.Errors {
		errs := validation.Errors{}
		if is.State == nil {
			if !allowNil {
				errs.Add("state", validation.MessageInclusion)
			}
			return errs
		}
		if !slices.Contains([]string{"open", "resolved", "unresolved"}, *is.State) {
			errs.Add("state", validation.MessageInclusion)
		}
		return errs
	})
	require.NoError(t, err)
	return s
}

// prioritySubject validates min <= priority <= max with "too low" and
// "too high" messages.
func prioritySubject(t *testing.T, min, max int) validation.Validatable {
	t.Helper()
	tk := &task{}
	s, err := validation.NewStructSubject(tk, func() validation.Errors {
		errs := validation.Errors{}
		if tk.Priority < min {
			errs.Add("priority", "too low")
		}
		if tk.Priority > max {
			errs.Add("priority", "too high")
		}
		return errs
	})
	require.NoError(t, err)
	return s
}

func TestInclusion_InArray(t *testing.T) {
	t.Run("accepts exactly the allowed values", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", "resolved", "unresolved")
		m := EnsureInclusionOf("state").InArray(issueStates...)

		res, err := m.Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
		matchers.Should[validation.Validatable](t, s, m)
	})

	t.Run("rejects a validation missing a value", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", "unresolved")
		res, err := EnsureInclusionOf("state").InArray(issueStates...).Evaluate(s)
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, `"resolved"`)
		assert.Contains(t, res.Message, "doesn't match array in validation")
	})

	t.Run("rejects a validation that accepts anything", func(t *testing.T) {
		is := &issue{}
		s, err := validation.NewStructSubject(is, func() validation.Errors { return nil })
		require.NoError(t, err)

		res, err := EnsureInclusionOf("state").InArray(issueStates...).Evaluate(s)
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, ArbitraryOutsideString)
	})

	t.Run("leaves the last probe value on the subject", func(t *testing.T) {
		is, s := issueSubject(t, false, "open", "resolved", "unresolved")
		_, err := EnsureInclusionOf("state").InArray(issueStates...).Evaluate(s)
		require.NoError(t, err)
		assert.Equal(t, ArbitraryOutsideString, is.State)
	})

	t.Run("outside value may be rejected with any message", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", "resolved", "unresolved")
		res, err := EnsureInclusionOf("state").InArray(issueStates...).WithMessage("must be a known state").Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("configured message fails an allowed value", func(t *testing.T) {
		is := &issue{}
		s, err := validation.NewStructSubject(is, func() validation.Errors {
			errs := validation.Errors{}
			if is.State == "resolved" || !slices.Contains([]string{"open", "unresolved"}, is.State) {
				errs.Add("state", "must be a known state")
			}
			return errs
		})
		require.NoError(t, err)

		res, err := EnsureInclusionOf("state").InArray(issueStates...).WithMessage("must be a known state").Evaluate(s)
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, `"resolved"`)
	})

	t.Run("subject failure stops evaluation", func(t *testing.T) {
		s := &unreachableSubject{failOn: "resolved"}
		res, err := EnsureInclusionOf("state").InArray(issueStates...).Evaluate(s)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, errUnreachable)
		assert.False(t, matchers.IsMisconfiguration(err))
		assert.Equal(t, []any{"open", "resolved"}, s.sent)
	})
}

var errUnreachable = errors.New("connection reset")

// unreachableSubject accepts every value until it is sent failOn, after
// which Err reports errUnreachable.
type unreachableSubject struct {
	failOn string
	value  any
	sent   []any
	err    error
}

func (s *unreachableSubject) SetAttribute(_ string, value any) error {
	s.value = value
	return nil
}

func (s *unreachableSubject) Validate() validation.Errors {
	s.sent = append(s.sent, s.value)
	errs := validation.Errors{}
	if s.value == s.failOn && s.err == nil {
		s.err = errUnreachable
	}
	if s.err != nil {
		errs.Add("state", "request failed")
	}
	return errs
}

func (s *unreachableSubject) Err() error {
	return s.err
}

func TestInclusion_AllowBlank(t *testing.T) {
	tests := []struct {
		name            string
		validatorBlanks bool
		flag            []bool
		passed          bool
	}{
		{"allow blank and validation allows", true, nil, true},
		{"allow blank but validation rejects", false, nil, false},
		{"disallow blank and validation rejects", false, []bool{false}, true},
		{"disallow blank but validation allows", true, []bool{false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s := issueSubject(t, tt.validatorBlanks, "open", "resolved", "unresolved")
			res, err := EnsureInclusionOf("state").InArray(issueStates...).AllowBlank(tt.flag...).Evaluate(s)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, res.Passed, res.Message)
		})
	}

	t.Run("omitted performs no blank check", func(t *testing.T) {
		_, s := issueSubject(t, true, "open", "resolved", "unresolved")
		res, err := EnsureInclusionOf("state").InArray(issueStates...).Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("every blank variant must be accepted", func(t *testing.T) {
		is := &issue{}
		s, err := validation.NewStructSubject(is, func() validation.Errors {
			errs := validation.Errors{}
			if is.State == "\f" || (is.State != "" && strings.TrimSpace(is.State) != "" &&
				!slices.Contains([]string{"open", "resolved", "unresolved"}, is.State)) {
				errs.Add("state", validation.MessageInclusion)
			}
			return errs
		})
		require.NoError(t, err)

		res, err := EnsureInclusionOf("state").InArray(issueStates...).AllowBlank().Evaluate(s)
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, `"\f"`)
	})
}

func TestInclusion_AllowNil(t *testing.T) {
	tests := []struct {
		name         string
		validatorNil bool
		flag         []bool
		passed       bool
	}{
		{"allow nil and validation allows", true, nil, true},
		{"allow nil but validation rejects", false, nil, false},
		{"disallow nil and validation rejects", false, []bool{false}, true},
		{"disallow nil but validation allows", true, []bool{false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := nullableIssueSubject(t, tt.validatorNil)
			res, err := EnsureInclusionOf("state").InArray(issueStates...).AllowNil(tt.flag...).Evaluate(s)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, res.Passed, res.Message)
		})
	}
}

func TestInclusion_OutsideValue(t *testing.T) {
	t.Run("synthesized string collides with the set", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", ArbitraryOutsideString)
		_, err := EnsureInclusionOf("state").InArray("open", ArbitraryOutsideString).Evaluate(s)
		require.Error(t, err)
		assert.ErrorIs(t, err, matchers.ErrOutsideValueUndetermined)
		assert.True(t, matchers.IsMisconfiguration(err))
	})

	t.Run("explicit outside value collides with the set", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", "resolved", "unresolved")
		_, err := EnsureInclusionOf("state").InArray(issueStates...).WithOutsideValue("open").Evaluate(s)
		assert.ErrorIs(t, err, matchers.ErrOutsideValueUndetermined)
	})

	t.Run("explicit outside value is probed", func(t *testing.T) {
		_, s := issueSubject(t, false, "open", "resolved", "unresolved")
		res, err := EnsureInclusionOf("state").InArray(issueStates...).WithOutsideValue("closed").Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("integer attribute uses the integer sentinel", func(t *testing.T) {
		s := prioritySubject(t, 1, 3)
		_, err := EnsureInclusionOf("priority").InArray(1, 2, 3, ArbitraryOutsideInteger).Evaluate(s)
		assert.ErrorIs(t, err, matchers.ErrOutsideValueUndetermined)

		res, err := EnsureInclusionOf("priority").InArray(1, 2, 3).Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("integer sentinel matches other integer types", func(t *testing.T) {
		s := prioritySubject(t, 1, 3)
		_, err := EnsureInclusionOf("priority").InArray(int64(1), int64(ArbitraryOutsideInteger)).Evaluate(s)
		assert.ErrorIs(t, err, matchers.ErrOutsideValueUndetermined)
	})

	t.Run("explicit kind overrides the subject", func(t *testing.T) {
		_, s := issueSubject(t, false, "open")
		_, err := EnsureInclusionOf("state").InArray("open", ArbitraryOutsideDecimal).OfKind(validation.KindDecimal).Evaluate(s)
		assert.ErrorIs(t, err, matchers.ErrOutsideValueUndetermined)
	})

	t.Run("decimal attribute uses the decimal sentinel", func(t *testing.T) {
		tk := &task{}
		s, err := validation.NewStructSubject(tk, func() validation.Errors {
			errs := validation.Errors{}
			if tk.Weight != 0.5 && tk.Weight != 1.5 {
				errs.Add("weight", validation.MessageInclusion)
			}
			return errs
		})
		require.NoError(t, err)

		res, err := EnsureInclusionOf("weight").InArray(0.5, 1.5).Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
		assert.Equal(t, ArbitraryOutsideDecimal, tk.Weight)
	})
}

func TestInclusion_InRange(t *testing.T) {
	m := EnsureInclusionOf("priority").InRange(1, 5).WithLowMessage("too low").WithHighMessage("too high")

	t.Run("matching validation", func(t *testing.T) {
		res, err := m.Evaluate(prioritySubject(t, 1, 5))
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("accepts below minimum", func(t *testing.T) {
		res, err := m.Evaluate(prioritySubject(t, 0, 5))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, "lower boundary")
		assert.Contains(t, res.Message, "reject 0")
	})

	t.Run("rejects minimum", func(t *testing.T) {
		res, err := m.Evaluate(prioritySubject(t, 2, 5))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, "minimum boundary")
	})

	t.Run("accepts above maximum", func(t *testing.T) {
		res, err := m.Evaluate(prioritySubject(t, 1, 6))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, "upper boundary")
		assert.Contains(t, res.Message, "reject 6")
	})

	t.Run("rejects maximum", func(t *testing.T) {
		res, err := m.Evaluate(prioritySubject(t, 1, 4))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, "maximum boundary")
	})

	t.Run("wrong low message", func(t *testing.T) {
		res, err := m.WithLowMessage("below range").Evaluate(prioritySubject(t, 1, 5))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, `"below range"`)
	})

	t.Run("default message", func(t *testing.T) {
		tk := &task{}
		s, err := validation.NewStructSubject(tk, func() validation.Errors {
			errs := validation.Errors{}
			if tk.Priority < 1 || tk.Priority > 5 {
				errs.Add("priority", validation.MessageInclusion)
			}
			return errs
		})
		require.NoError(t, err)

		res, err := EnsureInclusionOf("priority").InRange(1, 5).Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})

	t.Run("zero minimum skips the lower probe", func(t *testing.T) {
		tk := &task{}
		s, err := validation.NewStructSubject(tk, func() validation.Errors {
			errs := validation.Errors{}
			if tk.Priority > 3 {
				errs.Add("priority", validation.MessageInclusion)
			}
			return errs
		})
		require.NoError(t, err)

		res, err := EnsureInclusionOf("priority").InRange(0, 3).Evaluate(s)
		require.NoError(t, err)
		assert.True(t, res.Passed, res.Message)
	})
}

func TestInclusion_InRangeAtIntegerLimits(t *testing.T) {
	type account struct {
		Balance int64 `json:"balance"`
	}
	subject := func(t *testing.T, min, max int64) validation.Validatable {
		t.Helper()
		a := &account{}
		s, err := validation.NewStructSubject(a, func() validation.Errors {
			errs := validation.Errors{}
			if a.Balance < min {
				errs.Add("balance", "too low")
			}
			if a.Balance > max {
				errs.Add("balance", "too high")
			}
			return errs
		})
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name     string
		min, max int64
	}{
		{"maximum int64", 1, math.MaxInt64},
		{"minimum int64", math.MinInt64, 10},
		{"full int64 range", math.MinInt64, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EnsureInclusionOf("balance").InRange(tt.min, tt.max).
				WithLowMessage("too low").WithHighMessage("too high").
				Evaluate(subject(t, tt.min, tt.max))
			require.NoError(t, err)
			assert.True(t, res.Passed, res.Message)
		})
	}

	t.Run("still checks the maximum", func(t *testing.T) {
		res, err := EnsureInclusionOf("balance").InRange(1, math.MaxInt64).
			WithLowMessage("too low").WithHighMessage("too high").
			Evaluate(subject(t, 1, math.MaxInt64-1))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Contains(t, res.Message, "maximum boundary")
	})
}

func TestInclusion_Misconfiguration(t *testing.T) {
	s := prioritySubject(t, 1, 5)

	tests := []struct {
		name    string
		matcher InclusionMatcher
		err     error
	}{
		{"no constraint", EnsureInclusionOf("priority"), matchers.ErrNoConstraint},
		{"empty array", EnsureInclusionOf("priority").InArray(), matchers.ErrNoConstraint},
		{"both constraints", EnsureInclusionOf("priority").InArray(1, 2).InRange(1, 2), matchers.ErrConflictingConstraints},
		{"inverted range", EnsureInclusionOf("priority").InRange(5, 1), matchers.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.matcher.Evaluate(s)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("subject refuses the attribute", func(t *testing.T) {
		_, err := EnsureInclusionOf("severity").InArray("low").Evaluate(s)
		assert.ErrorIs(t, err, validation.ErrUnknownAttribute)
		assert.False(t, matchers.IsMisconfiguration(err))
	})
}

func TestInclusion_Builder(t *testing.T) {
	base := EnsureInclusionOf("state")
	inArray := base.InArray(issueStates...)
	inRange := base.InRange(1, 5)

	assert.Equal(t, "state", base.Attribute())
	assert.Equal(t, "ensure inclusion of state in []", base.Description())
	assert.Equal(t, `ensure inclusion of state in ["open", "resolved", "unresolved"]`, inArray.Description())
	assert.Equal(t, "ensure inclusion of state in 1..5", inRange.Description())

	values := []any{"a", "b"}
	m := base.InArray(values...)
	values[0] = "z"
	assert.Equal(t, `ensure inclusion of state in ["a", "b"]`, m.Description())

	withMsg := inRange.WithMessage("nope")
	assert.Empty(t, inRange.lowMessage)
	assert.Equal(t, "nope", withMsg.lowMessage)
	assert.Equal(t, "nope", withMsg.highMessage)
	assert.Equal(t, "nope", withMsg.WithMessage("").lowMessage)
}
