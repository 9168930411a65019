package env

import (
	"os"
	"strings"
)

// MergeVariables merges sources left to right; later sources win.
func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// StringVariables widens a string map for MergeVariables.
func StringVariables(vars map[string]string) map[string]any {
	result := make(map[string]any, len(vars))
	for k, v := range vars {
		result[k] = v
	}
	return result
}

// LoadSystemEnv returns the OS environment variables starting with prefix,
// with the prefix removed. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
