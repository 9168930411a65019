package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} expressions. It is safe for concurrent use.
// Lookup order is: function call, OS variable ($NAME), capture, variable.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture records a value captured by a check. It is reachable both as
// {{check.name}} and as {{name}}.
func (r *Resolver) SetCapture(checkName, captureName string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures[checkName+"."+captureName] = value
	r.captures[captureName] = value
}

func (r *Resolver) GetCapture(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.captures[name]
	return v, ok
}

// lookup resolves one expression without the braces.
func (r *Resolver) lookup(expr string) (any, bool) {
	if strings.Contains(expr, "(") {
		v, ok, err := r.funcs.Call(expr)
		if err != nil {
			r.warn("function call %s failed: %v", expr, err)
			return nil, false
		}
		if !ok {
			r.warn("unresolved function call: %s", expr)
		}
		return v, ok
	}

	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, set := os.LookupEnv(name); set {
			return val, true
		}
		r.warn("unresolved environment variable: $%s", name)
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if val, ok := r.captures[expr]; ok {
		return val, true
	}
	if val, ok := r.variables[expr]; ok {
		return val, true
	}
	return nil, false
}

// Resolve expands every {{...}} in input. Unresolved expressions are left
// as they are.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := r.lookup(expr); ok {
			return fmt.Sprintf("%v", val)
		}
		if !strings.HasPrefix(expr, "$") && !strings.Contains(expr, "(") {
			r.warn("unresolved variable: %s", expr)
		}
		return match
	})
}

// ResolveValue expands strings inside v, walking maps and slices. A string
// that is exactly one expression resolves to the variable's own value, so
// "{{limit}}" can stay an integer.
func (r *Resolver) ResolveValue(v any) any {
	switch val := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatchIndex(val); m != nil && m[0] == 0 && m[1] == len(val) {
			expr := strings.TrimSpace(val[m[2]:m[3]])
			if resolved, ok := r.lookup(expr); ok {
				return resolved
			}
			return val
		}
		return r.Resolve(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.ResolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.ResolveValue(item)
		}
		return out
	default:
		return v
	}
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// GetUnresolvedVariables returns the plain variable names in input that
// have no value, in order of appearance. Function calls and $NAME lookups
// are not reported.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if strings.HasPrefix(expr, "$") || strings.Contains(expr, "(") {
			continue
		}
		if !r.HasVariable(expr) {
			missing = append(missing, expr)
		}
	}
	return missing
}

func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.GetVariable(name)
	return ok
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	return nil, false
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	clone.warnFunc = r.warnFunc
	return clone
}
