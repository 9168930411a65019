package suite

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/matchers/controller"
	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
)

// Problem is one finding of Validate.
type Problem struct {
	Check   string
	Line    int
	Message string
}

func (p Problem) String() string {
	switch {
	case p.Check == "":
		return p.Message
	case p.Line > 0:
		return fmt.Sprintf("check %q (line %d): %s", p.Check, p.Line, p.Message)
	default:
		return fmt.Sprintf("check %q: %s", p.Check, p.Message)
	}
}

// ValidationError lists every problem found in a suite.
type ValidationError struct {
	Path     string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	prefix := "invalid suite"
	if e.Path != "" {
		prefix = "invalid suite " + e.Path
	}
	return prefix + ": " + strings.Join(lines, "; ")
}

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodPatch: true, http.MethodDelete: true, http.MethodOptions: true,
}

// Validate checks the structure of the suite. It does not check matcher
// constraints such as an empty allow-list; the matchers report those when
// they run.
func (s *Suite) Validate() error {
	v := &validator{}

	if len(s.Checks) == 0 {
		v.addf(nil, "suite has no checks")
	}

	names := make(map[string]bool, len(s.Checks))
	for i, c := range s.Checks {
		if c == nil {
			v.addf(nil, "check %d is empty", i+1)
			continue
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("check %d", i+1)
			v.addf(c, "name is required")
		} else if names[c.Name] {
			v.addf(c, "duplicate check name")
		}
		names[c.Name] = true
		v.check(c)
	}

	for _, c := range s.Checks {
		if c == nil {
			continue
		}
		for _, dep := range c.Depends {
			if dep == c.Name {
				v.addf(c, "depends on itself")
			} else if !names[dep] {
				v.addf(c, "depends on unknown check %q", dep)
			}
		}
	}

	if len(v.problems) > 0 {
		return &ValidationError{Path: s.Path, Problems: v.problems}
	}
	return nil
}

type validator struct {
	problems []Problem
}

func (v *validator) addf(c *Check, format string, args ...any) {
	p := Problem{Message: fmt.Sprintf(format, args...)}
	if c != nil {
		p.Check = c.Name
		p.Line = c.Line
	}
	v.problems = append(v.problems, p)
}

func (v *validator) check(c *Check) {
	switch {
	case c.Request != nil && c.Inclusion != nil:
		v.addf(c, "has both request and inclusion")
		return
	case c.Request == nil && c.Inclusion == nil:
		v.addf(c, "needs a request or an inclusion")
		return
	case c.Inclusion != nil:
		if c.Expect != nil || len(c.Capture) > 0 {
			v.addf(c, "expect and capture only apply to request checks")
		}
		v.inclusion(c)
	default:
		v.request(c)
	}
}

func (v *validator) request(c *Check) {
	r := c.Request
	if r.URL == "" {
		v.addf(c, "request url is required")
	}
	if !knownMethods[r.MethodOrDefault()] {
		v.addf(c, "unknown method %q", r.Method)
	}
	if r.Timeout != "" {
		if _, err := time.ParseDuration(r.Timeout); err != nil {
			v.addf(c, "invalid timeout %q", r.Timeout)
		}
	}

	e := c.Expect
	if e == nil {
		return
	}
	if e.Status != "" {
		if _, _, err := controller.ParseStatus(e.Status); err != nil {
			v.addf(c, "%v", err)
		}
	}
	for _, cookie := range e.Cookies {
		if cookie.Name == "" {
			v.addf(c, "cookie expectation needs a name")
		}
	}
	for name, path := range c.Capture {
		if path == "" {
			v.addf(c, "capture %q needs a path", name)
		}
	}
}

func (v *validator) inclusion(c *Check) {
	in := c.Inclusion
	if in.Attribute == "" {
		v.addf(c, "inclusion attribute is required")
	}
	if in.Kind != "" {
		if _, ok := validation.ParseKind(in.Kind); !ok {
			v.addf(c, "unknown kind %q", in.Kind)
		}
	}

	sub := in.Subject
	switch {
	case sub.HTTP != nil && sub.SQLite != nil:
		v.addf(c, "subject has both http and sqlite")
	case sub.HTTP != nil:
		if sub.HTTP.URL == "" {
			v.addf(c, "http subject url is required")
		}
		if sub.HTTP.Method != "" && !knownMethods[strings.ToUpper(sub.HTTP.Method)] {
			v.addf(c, "unknown method %q", sub.HTTP.Method)
		}
	case sub.SQLite != nil:
		if sub.SQLite.Database == "" {
			v.addf(c, "sqlite subject database is required")
		}
		if sub.SQLite.Table == "" {
			v.addf(c, "sqlite subject table is required")
		}
	default:
		v.addf(c, "inclusion needs an http or sqlite subject")
	}
}
