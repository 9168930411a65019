package controller

import (
	"net/url"

	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// RedirectMatcher checks for a 3xx response with a given Location.
type RedirectMatcher struct {
	location string
}

// RedirectTo expects a redirect to location. A location without a host is
// compared against the path and query of the response's Location only.
func RedirectTo(location string) RedirectMatcher {
	return RedirectMatcher{location: location}
}

func (m RedirectMatcher) Description() string {
	return "redirect to " + m.location
}

func (m RedirectMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	expected, err := url.Parse(m.location)
	if err != nil || m.location == "" {
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
	if !resp.IsRedirect() {
		return matchers.Fail("redirect", "location", m.Description(),
			"expected response to be a redirect to %s, but was %d", m.location, resp.StatusCode).WithValues(m.location, resp.StatusCode), nil
	}

	location := resp.Location()
	actual, err := url.Parse(location)
	if err != nil {
		return matchers.Fail("redirect", "location", m.Description(),
			"expected response to redirect to %s, but Location %q is not a URL", m.location, location).WithValues(m.location, location), nil
	}

	got := actual.String()
	want := expected.String()
	if expected.Host == "" {
		got = actual.RequestURI()
		want = expected.RequestURI()
	}
	if got == want {
		return matchers.Pass("redirect", "location", m.Description()), nil
	}
	return matchers.Fail("redirect", "location", m.Description(),
		"expected response to redirect to %s, but redirected to %s", m.location, location).WithValues(m.location, location), nil
}
