package model

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
)

const inclusionMatcherName = "inclusion"

// Values used to probe rejection when the caller does not name one.
const (
	ArbitraryOutsideString  = "shouldamatchersteststring"
	ArbitraryOutsideInteger = 123456789
	ArbitraryOutsideDecimal = 0.123456789
)

// BlankValues are the strings probed by AllowBlank.
var BlankValues = []string{"", " ", "\n", "\r", "\t", "\f"}

// Range is an inclusive integer range.
type Range struct {
	Min int64
	Max int64
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Min, r.Max)
}

// InclusionMatcher checks an inclusion validation. It is an immutable
// builder: every qualifier returns a modified copy.
type InclusionMatcher struct {
	attribute    string
	values       []any
	inArray      bool
	rng          *Range
	lowMessage   string
	highMessage  string
	allowBlank   *bool
	allowNil     *bool
	kind         *validation.Kind
	outsideValue any
	hasOutside   bool
}

var _ matchers.Matcher[validation.Validatable] = InclusionMatcher{}

// EnsureInclusionOf starts a matcher for attribute.
func EnsureInclusionOf(attribute string) InclusionMatcher {
	return InclusionMatcher{attribute: attribute}
}

// InArray sets the explicit allow-list.
func (m InclusionMatcher) InArray(values ...any) InclusionMatcher {
	m.values = append([]any(nil), values...)
	m.inArray = true
	return m
}

// InRange sets an inclusive integer allow-range.
func (m InclusionMatcher) InRange(min, max int64) InclusionMatcher {
	m.rng = &Range{Min: min, Max: max}
	return m
}

// AllowBlank declares whether blank strings are accepted. With no argument
// the flag is true.
func (m InclusionMatcher) AllowBlank(flag ...bool) InclusionMatcher {
	v := len(flag) == 0 || flag[0]
	m.allowBlank = &v
	return m
}

// AllowNil declares whether the absent value is accepted. With no argument
// the flag is true.
func (m InclusionMatcher) AllowNil(flag ...bool) InclusionMatcher {
	v := len(flag) == 0 || flag[0]
	m.allowNil = &v
	return m
}

// WithMessage sets both the low and the high message. An empty message is
// ignored.
func (m InclusionMatcher) WithMessage(msg string) InclusionMatcher {
	if msg != "" {
		m.lowMessage = msg
		m.highMessage = msg
	}
	return m
}

func (m InclusionMatcher) WithLowMessage(msg string) InclusionMatcher {
	if msg != "" {
		m.lowMessage = msg
	}
	return m
}

func (m InclusionMatcher) WithHighMessage(msg string) InclusionMatcher {
	if msg != "" {
		m.highMessage = msg
	}
	return m
}

// OfKind fixes the attribute's value kind instead of asking the subject.
func (m InclusionMatcher) OfKind(kind validation.Kind) InclusionMatcher {
	m.kind = &kind
	return m
}

// WithOutsideValue names the value used to probe rejection in array mode.
func (m InclusionMatcher) WithOutsideValue(v any) InclusionMatcher {
	m.outsideValue = v
	m.hasOutside = true
	return m
}

func (m InclusionMatcher) Attribute() string {
	return m.attribute
}

func (m InclusionMatcher) Description() string {
	return fmt.Sprintf("ensure inclusion of %s in %s", m.attribute, m.inspect())
}

func (m InclusionMatcher) inspect() string {
	if m.rng != nil && !m.inArray {
		return m.rng.String()
	}
	parts := make([]string, len(m.values))
	for i, v := range m.values {
		parts[i] = inspectValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Evaluate runs the probe sequence against subject. A non-nil error means
// the matcher is misconfigured or the subject refused a value.
func (m InclusionMatcher) Evaluate(subject validation.Validatable) (*matchers.Result, error) {
	switch {
	case m.rng != nil && m.inArray:
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrConflictingConstraints)
	case m.rng != nil:
		if m.rng.Min > m.rng.Max {
			return nil, matchers.Misconfigured(m.Description(), matchers.ErrInvalidRange)
		}
		return m.evaluateRange(subject)
	case len(m.values) > 0:
		return m.evaluateArray(subject)
	default:
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
}

func (m InclusionMatcher) evaluateRange(subject validation.Validatable) (*matchers.Result, error) {
	low := m.lowMessage
	if low == "" {
		low = validation.MessageInclusion
	}
	high := m.highMessage
	if high == "" {
		high = validation.MessageInclusion
	}
	p := prober{subject: subject, attribute: m.attribute}

	steps := []struct {
		boundary string
		value    int64
		accept   bool
		message  string
		skip     bool
	}{
		{"lower", m.rng.Min - 1, false, low, m.rng.Min == 0 || m.rng.Min == math.MinInt64},
		{"minimum", m.rng.Min, true, low, false},
		{"upper", m.rng.Max + 1, false, high, m.rng.Max == math.MaxInt64},
		{"maximum", m.rng.Max, true, high, false},
	}
	for _, step := range steps {
		if step.skip {
			continue
		}
		ok, errs, err := p.probe(step.value, step.accept, step.message)
		if err != nil {
			return nil, err
		}
		if !ok {
			return m.boundaryFailure(step.boundary, step.value, step.accept, step.message, errs), nil
		}
	}
	return matchers.Pass(inclusionMatcherName, m.attribute, m.Description()), nil
}

func (m InclusionMatcher) boundaryFailure(boundary string, value int64, accept bool, msg string, errs []string) *matchers.Result {
	var res *matchers.Result
	if accept {
		res = matchers.Fail(inclusionMatcherName, m.attribute, m.Description(),
			"%s boundary: expected %s to accept %d, got errors %s", boundary, m.attribute, value, inspectErrors(errs))
	} else {
		res = matchers.Fail(inclusionMatcherName, m.attribute, m.Description(),
			"%s boundary: expected %s to reject %d with %q, got errors %s", boundary, m.attribute, value, msg, inspectErrors(errs))
	}
	return res.WithValues(msg, errs)
}

func (m InclusionMatcher) evaluateArray(subject validation.Validatable) (*matchers.Result, error) {
	// Resolved before probing so the kind is read from the subject's own
	// value and a collision is reported before the subject is touched.
	outside, err := m.valueOutsideOfArray(subject)
	if err != nil {
		return nil, err
	}
	p := prober{subject: subject, attribute: m.attribute}

	for _, v := range m.values {
		ok, errs, err := p.probe(v, true, m.lowMessage)
		if err != nil {
			return nil, err
		}
		if !ok {
			return m.arrayFailure("expected %s to accept %s, got errors %s", m.attribute, inspectValue(v), inspectErrors(errs)).
				WithValues(m.values, errs), nil
		}
	}

	if m.allowBlank != nil {
		accepted := true
		var rejected string
		var rejectedErrs []string
		for _, v := range BlankValues {
			ok, errs, err := p.probe(v, true, "")
			if err != nil {
				return nil, err
			}
			if !ok {
				accepted = false
				rejected = v
				rejectedErrs = errs
				break
			}
		}
		if accepted != *m.allowBlank {
			if *m.allowBlank {
				return m.arrayFailure("expected %s to allow blank values, %s was rejected with %s",
					m.attribute, inspectValue(rejected), inspectErrors(rejectedErrs)), nil
			}
			return m.arrayFailure("expected %s not to allow blank values, all blank values were accepted", m.attribute), nil
		}
	}

	if m.allowNil != nil {
		ok, errs, err := p.probe(nil, true, "")
		if err != nil {
			return nil, err
		}
		if ok != *m.allowNil {
			if *m.allowNil {
				return m.arrayFailure("expected %s to allow nil, got errors %s", m.attribute, inspectErrors(errs)), nil
			}
			return m.arrayFailure("expected %s not to allow nil, nil was accepted", m.attribute), nil
		}
	}

	ok, errs, err := p.probe(outside, false, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return m.arrayFailure("expected %s to reject %s, got errors %s", m.attribute, inspectValue(outside), inspectErrors(errs)).
			WithValues(m.values, outside), nil
	}
	return matchers.Pass(inclusionMatcherName, m.attribute, m.Description()), nil
}

func (m InclusionMatcher) arrayFailure(format string, args ...any) *matchers.Result {
	res := matchers.Fail(inclusionMatcherName, m.attribute, m.Description(), format, args...)
	res.Message = fmt.Sprintf("%s doesn't match array in validation: %s", m.inspect(), res.Message)
	return res
}

func (m InclusionMatcher) valueOutsideOfArray(subject validation.Validatable) (any, error) {
	outside := m.outsideValue
	if !m.hasOutside {
		outside = m.arbitraryOutsideValue(subject)
	}
	for _, v := range m.values {
		if sameValue(v, outside) {
			return nil, matchers.Misconfigured(m.Description(),
				fmt.Errorf("%w: %s is one of the allowed values", matchers.ErrOutsideValueUndetermined, inspectValue(outside)))
		}
	}
	return outside, nil
}

func (m InclusionMatcher) arbitraryOutsideValue(subject validation.Validatable) any {
	var kind validation.Kind
	if m.kind != nil {
		kind = *m.kind
	} else {
		kind = validation.AttributeKind(subject, m.attribute)
	}
	switch kind {
	case validation.KindInteger:
		return ArbitraryOutsideInteger
	case validation.KindDecimal:
		return ArbitraryOutsideDecimal
	default:
		return ArbitraryOutsideString
	}
}

// sameValue compares deeply, then numerically across numeric types.
func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	return aok && bok && af == bf
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func inspectValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", val)
	}
	return fmt.Sprintf("%v", v)
}

func inspectErrors(errs []string) string {
	if len(errs) == 0 {
		return "none"
	}
	quoted := make([]string, len(errs))
	for i, e := range errs {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
