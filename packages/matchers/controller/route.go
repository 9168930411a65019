package controller

import (
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
	"github.com/abdul-hamid-achik/hitmatch/packages/routing"
)

// RouteMatcher checks that a request is recognized as a named route.
type RouteMatcher struct {
	method string
	path   string
	target string
	params map[string]string
}

// Route starts a route expectation for method and path.
func Route(method, path string) RouteMatcher {
	return RouteMatcher{method: strings.ToUpper(method), path: path}
}

// To sets the expected route name and, optionally, its path parameters.
// Parameters are compared only when params is given.
func (m RouteMatcher) To(target string, params ...map[string]string) RouteMatcher {
	m.target = target
	m.params = nil
	if len(params) > 0 {
		m.params = make(map[string]string)
		for _, p := range params {
			for k, v := range p {
				m.params[k] = v
			}
		}
	}
	return m
}

func (m RouteMatcher) Description() string {
	desc := "route " + m.method + " " + m.path + " to " + m.target
	if len(m.params) > 0 {
		desc += " with " + inspect(m.params)
	}
	return desc
}

func (m RouteMatcher) Evaluate(router routing.Recognizer) (*matchers.Result, error) {
	if m.target == "" {
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
	subject := m.method + " " + m.path

	match, ok := router.Recognize(m.method, m.path)
	if !ok {
		return matchers.Fail("route", subject, m.Description(),
			"expected %s to be routed to %s, but no route matches", subject, m.target), nil
	}
	if match.Name != m.target {
		return matchers.Fail("route", subject, m.Description(),
			"expected %s to be routed to %s, but was routed to %s", subject, m.target, match.Name).WithValues(m.target, match.Name), nil
	}
	if m.params != nil {
		if diff := cmp.Diff(m.params, match.Params, cmpopts.EquateEmpty()); diff != "" {
			return matchers.Fail("route", subject, m.Description(),
				"route params mismatch (-want +got):\n%s", diff).WithValues(m.params, match.Params), nil
		}
	}
	return matchers.Pass("route", subject, m.Description()), nil
}
