// Package routing recognizes requests as named routes with path parameters.
// It is the subject of the route matcher.
package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// Match is a recognized route.
type Match struct {
	Name    string
	Method  string
	Pattern string
	Params  map[string]string
}

// Recognizer maps a method and path to a route.
type Recognizer interface {
	Recognize(method, path string) (*Match, bool)
}

// Route is one entry of a Router.
type Route struct {
	Method    string
	Pattern   string
	Name      string
	pathRegex *regexp.Regexp
}

// Router is an ordered route table. Patterns use {name} for one segment and
// {name...} for the remainder of the path.
type Router struct {
	routes []*Route
}

var paramPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(\.\.\.)?\}`)

func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle adds a route. Method "" or "*" matches any method.
func (r *Router) Handle(method, pattern, name string) error {
	re, err := compilePattern(normalizePath(pattern))
	if err != nil {
		return fmt.Errorf("route %s %s: %w", method, pattern, err)
	}
	r.routes = append(r.routes, &Route{
		Method:    strings.ToUpper(method),
		Pattern:   pattern,
		Name:      name,
		pathRegex: re,
	})
	return nil
}

// Routes returns the table in registration order.
func (r *Router) Routes() []*Route {
	return r.routes
}

// Recognize returns the first route matching method and path.
func (r *Router) Recognize(method, path string) (*Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = normalizePath(path)

	for _, route := range r.routes {
		if route.Method != "" && route.Method != "*" && !strings.EqualFold(route.Method, method) {
			continue
		}

		matches := route.pathRegex.FindStringSubmatch(path)
		if matches == nil {
			continue
		}
		params := make(map[string]string)
		for i, name := range route.pathRegex.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = matches[i]
			}
		}
		return &Match{
			Name:    route.Name,
			Method:  strings.ToUpper(method),
			Pattern: route.Pattern,
			Params:  params,
		}, true
	}

	return nil, false
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		name := pattern[loc[2]:loc[3]]
		if loc[4] >= 0 {
			fmt.Fprintf(&b, "(?P<%s>.*)", name)
		} else {
			fmt.Fprintf(&b, "(?P<%s>[^/]+)", name)
		}
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
