package controller

import (
	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// CookieMatcher checks a Set-Cookie in the response.
type CookieMatcher struct {
	name     string
	value    string
	hasValue bool
}

// SetCookie expects the response to set the named cookie.
func SetCookie(name string) CookieMatcher {
	return CookieMatcher{name: name}
}

// To also requires the cookie's value.
func (m CookieMatcher) To(value string) CookieMatcher {
	m.value = value
	m.hasValue = true
	return m
}

func (m CookieMatcher) Description() string {
	if m.hasValue {
		return "set cookie " + m.name + " to " + m.value
	}
	return "set cookie " + m.name
}

func (m CookieMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	if m.name == "" {
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
	cookie, ok := resp.Cookie(m.name)
	if !ok {
		return matchers.Fail("cookie", m.name, m.Description(),
			"expected response to set cookie %q, but it was not set", m.name), nil
	}
	if m.hasValue && cookie.Value != m.value {
		return matchers.Fail("cookie", m.name, m.Description(),
			"expected cookie %q to be %q, but was %q", m.name, m.value, cookie.Value).WithValues(m.value, cookie.Value), nil
	}
	return matchers.Pass("cookie", m.name, m.Description()), nil
}
