package matchers

import (
	"errors"
	"fmt"
)

// Misconfiguration errors. Evaluate wraps one of these when it cannot reach
// a verdict.
var (
	ErrNoConstraint             = errors.New("no allowed values or range configured")
	ErrConflictingConstraints   = errors.New("both allowed values and range configured")
	ErrInvalidRange             = errors.New("range minimum is greater than maximum")
	ErrOutsideValueUndetermined = errors.New("could not determine a value outside of the allowed values")
	ErrUnknownStatus            = errors.New("unknown status")
)

// Matcher is a configured predicate over subjects of type S.
type Matcher[S any] interface {
	Description() string
	Evaluate(subject S) (*Result, error)
}

// Result is the verdict of one evaluation.
type Result struct {
	Passed      bool
	Message     string
	Description string
	Matcher     string
	Subject     string
	Expected    any
	Actual      any
}

// Pass returns a passing result.
func Pass(name, subject, description string) *Result {
	return &Result{
		Passed:      true,
		Matcher:     name,
		Subject:     subject,
		Description: description,
	}
}

// Fail returns a failing result with a formatted message.
func Fail(name, subject, description string, format string, args ...any) *Result {
	return &Result{
		Passed:      false,
		Matcher:     name,
		Subject:     subject,
		Description: description,
		Message:     fmt.Sprintf(format, args...),
	}
}

// WithValues records expected and actual values on r and returns it.
func (r *Result) WithValues(expected, actual any) *Result {
	r.Expected = expected
	r.Actual = actual
	return r
}

// Misconfigured wraps err with the matcher description.
func Misconfigured(description string, err error) error {
	return fmt.Errorf("%s: %w", description, err)
}

// IsMisconfiguration reports whether err is one of the package's
// misconfiguration errors.
func IsMisconfiguration(err error) bool {
	return errors.Is(err, ErrNoConstraint) ||
		errors.Is(err, ErrConflictingConstraints) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOutsideValueUndetermined) ||
		errors.Is(err, ErrUnknownStatus)
}

type notMatcher[S any] struct {
	inner Matcher[S]
}

// Not inverts m. Misconfiguration errors pass through unchanged.
func Not[S any](m Matcher[S]) Matcher[S] {
	return notMatcher[S]{inner: m}
}

func (n notMatcher[S]) Description() string {
	return "not " + n.inner.Description()
}

func (n notMatcher[S]) Evaluate(subject S) (*Result, error) {
	res, err := n.inner.Evaluate(subject)
	if err != nil {
		return nil, err
	}
	out := *res
	out.Description = n.Description()
	out.Passed = !res.Passed
	if out.Passed {
		out.Message = ""
	} else {
		out.Message = fmt.Sprintf("did not expect to %s", res.Description)
	}
	return &out, nil
}
