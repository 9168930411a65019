package model

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
)

// prober assigns one value at a time to an attribute and reads back the
// messages the subject recorded for it.
type prober struct {
	subject   validation.Validatable
	attribute string
}

// probe sets value and validates. For an accepting probe ok means msg was
// not recorded (no message at all when msg is empty); for a rejecting probe
// ok means msg was recorded (any message when msg is empty).
func (p prober) probe(value any, accept bool, msg string) (ok bool, errs []string, err error) {
	if err := p.subject.SetAttribute(p.attribute, value); err != nil {
		return false, nil, fmt.Errorf("probing %s with %s: %w", p.attribute, inspectValue(value), err)
	}
	errs = p.subject.Validate().On(p.attribute)
	if fr, ok := p.subject.(validation.FailureReporter); ok && fr.Err() != nil {
		return false, errs, fmt.Errorf("probing %s with %s: %w", p.attribute, inspectValue(value), fr.Err())
	}

	recorded := len(errs) > 0
	if msg != "" {
		recorded = false
		for _, e := range errs {
			if e == msg {
				recorded = true
				break
			}
		}
	}
	if accept {
		return !recorded, errs, nil
	}
	return recorded, errs, nil
}
