package controller

import (
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// StatusClass is a named range of status codes.
type StatusClass string

const (
	StatusSuccess     StatusClass = "success"
	StatusRedirect    StatusClass = "redirect"
	StatusMissing     StatusClass = "missing"
	StatusError       StatusClass = "error"
	StatusClientError StatusClass = "client_error"
	StatusServerError StatusClass = "server_error"
)

// Contains reports whether code belongs to the class.
func (c StatusClass) Contains(code int) bool {
	switch c {
	case StatusSuccess:
		return code >= 200 && code < 300
	case StatusRedirect:
		return code >= 300 && code < 400
	case StatusMissing:
		return code == nethttp.StatusNotFound
	case StatusClientError:
		return code >= 400 && code < 500
	case StatusError, StatusServerError:
		return code >= 500 && code < 600
	}
	return false
}

var statusByName = func() map[string]int {
	m := make(map[string]int)
	for code := 100; code < 600; code++ {
		text := nethttp.StatusText(code)
		if text == "" {
			continue
		}
		name := strings.ToLower(text)
		name = strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(name)
		m[name] = code
	}
	return m
}()

// ParseStatus resolves a status given as a number, a class name or a
// snake_case status text such as "unprocessable_entity".
func ParseStatus(name string) (int, StatusClass, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if code, err := strconv.Atoi(name); err == nil {
		if code < 100 || code > 599 {
			return 0, "", fmt.Errorf("%w: %d", matchers.ErrUnknownStatus, code)
		}
		return code, "", nil
	}
	switch class := StatusClass(name); class {
	case StatusSuccess, StatusRedirect, StatusMissing, StatusError, StatusClientError, StatusServerError:
		return 0, class, nil
	}
	if code, ok := statusByName[name]; ok {
		return code, "", nil
	}
	return 0, "", fmt.Errorf("%w: %q", matchers.ErrUnknownStatus, name)
}

// StatusMatcher checks the response status.
type StatusMatcher struct {
	code  int
	class StatusClass
	name  string
	err   error
}

// RespondWith expects the exact status code.
func RespondWith(code int) StatusMatcher {
	m := StatusMatcher{code: code, name: strconv.Itoa(code)}
	if code < 100 || code > 599 {
		m.err = fmt.Errorf("%w: %d", matchers.ErrUnknownStatus, code)
	}
	return m
}

// RespondWithStatus expects a status given by name; see ParseStatus.
func RespondWithStatus(name string) StatusMatcher {
	code, class, err := ParseStatus(name)
	return StatusMatcher{code: code, class: class, name: name, err: err}
}

func (m StatusMatcher) Description() string {
	return "respond with " + m.name
}

func (m StatusMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	if m.err != nil {
		return nil, matchers.Misconfigured(m.Description(), m.err)
	}
	if m.class != "" {
		if m.class.Contains(resp.StatusCode) {
			return matchers.Pass("status", "status", m.Description()), nil
		}
		return matchers.Fail("status", "status", m.Description(),
			"expected response to be %s, but was %d", m.class, resp.StatusCode).WithValues(string(m.class), resp.StatusCode), nil
	}
	if resp.StatusCode == m.code {
		return matchers.Pass("status", "status", m.Description()), nil
	}
	return matchers.Fail("status", "status", m.Description(),
		"expected response to be a %d, but was %d", m.code, resp.StatusCode).WithValues(m.code, resp.StatusCode), nil
}
