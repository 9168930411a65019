package validation

import (
	"fmt"
	"sort"
	"strings"
)

// MessageInclusion is the message recorded by inclusion validations when no
// custom message is configured.
const MessageInclusion = "is not included in the list"

// Errors collects validation messages per attribute, in insertion order.
type Errors map[string][]string

// Add records msg against attribute.
func (e Errors) Add(attribute, msg string) {
	e[attribute] = append(e[attribute], msg)
}

// On returns the messages recorded for attribute.
func (e Errors) On(attribute string) []string {
	if e == nil {
		return nil
	}
	return e[attribute]
}

// Has reports whether msg was recorded for attribute.
func (e Errors) Has(attribute, msg string) bool {
	for _, m := range e.On(attribute) {
		if m == msg {
			return true
		}
	}
	return false
}

func (e Errors) Empty() bool {
	return e.Count() == 0
}

// Count returns the total number of messages over all attributes.
func (e Errors) Count() int {
	n := 0
	for _, msgs := range e {
		n += len(msgs)
	}
	return n
}

func (e Errors) String() string {
	if e.Empty() {
		return "no errors"
	}
	attrs := make([]string, 0, len(e))
	for attr := range e {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	var parts []string
	for _, attr := range attrs {
		for _, msg := range e[attr] {
			parts = append(parts, fmt.Sprintf("%s %s", attr, msg))
		}
	}
	return strings.Join(parts, "; ")
}
