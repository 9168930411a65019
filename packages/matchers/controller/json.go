package controller

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// JSONMatcher checks a value in a JSON body at a gjson path.
// Bracket indexes are accepted: "items[0].id" is "items.0.id".
type JSONMatcher struct {
	path     string
	expected any
	hasValue bool
}

// RenderJSON expects path to exist in the response body.
func RenderJSON(path string) JSONMatcher {
	return JSONMatcher{path: path}
}

// To also requires the value at path to equal expected.
func (m JSONMatcher) To(expected any) JSONMatcher {
	m.expected = expected
	m.hasValue = true
	return m
}

func (m JSONMatcher) Description() string {
	if m.hasValue {
		return "render JSON " + m.path + " as " + inspect(m.expected)
	}
	return "render JSON " + m.path
}

func (m JSONMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	if m.path == "" {
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
	if !gjson.ValidBytes(resp.Body) {
		return matchers.Fail("json", m.path, m.Description(),
			"expected response body to be JSON, got %q", truncate(resp.BodyString(), 80)), nil
	}

	value := gjson.GetBytes(resp.Body, convertBracketNotation(m.path))
	if !value.Exists() {
		return matchers.Fail("json", m.path, m.Description(),
			"expected JSON path %s to exist", m.path), nil
	}
	if !m.hasValue {
		return matchers.Pass("json", m.path, m.Description()), nil
	}

	actual := value.Value()
	if valuesEqual(actual, m.expected) {
		return matchers.Pass("json", m.path, m.Description()), nil
	}
	return matchers.Fail("json", m.path, m.Description(),
		"expected %s to be %s, but was %s", m.path, inspect(m.expected), value.Raw).WithValues(m.expected, actual), nil
}

func inspect(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "<unprintable>"
	}
	return string(data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
