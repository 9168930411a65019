package routing

import (
	"net/http"
	"strings"
)

// ServeMuxRecognizer recognizes requests with a *http.ServeMux. The route
// name is the pattern the mux matched, as it was registered.
type ServeMuxRecognizer struct {
	mux *http.ServeMux
}

func FromServeMux(mux *http.ServeMux) *ServeMuxRecognizer {
	return &ServeMuxRecognizer{mux: mux}
}

func (s *ServeMuxRecognizer) Recognize(method, path string) (*Match, bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, "http://localhost"+path, nil)
	if err != nil {
		return nil, false
	}
	_, pattern := s.mux.Handler(req)
	if pattern == "" {
		return nil, false
	}
	return &Match{
		Name:    pattern,
		Method:  strings.ToUpper(method),
		Pattern: pattern,
		Params:  muxParams(pattern, req.URL.Path),
	}, true
}

// muxParams extracts wildcard values by walking the pattern's path segments
// alongside the request path.
func muxParams(pattern, path string) map[string]string {
	params := make(map[string]string)

	if i := strings.Index(pattern, "/"); i >= 0 {
		pattern = pattern[i:]
	}
	patSegs := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	pathSegs := strings.Split(strings.TrimPrefix(path, "/"), "/")

	for i, seg := range patSegs {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		if name == "$" {
			continue
		}
		if strings.HasSuffix(name, "...") {
			if i < len(pathSegs) {
				params[strings.TrimSuffix(name, "...")] = strings.Join(pathSegs[i:], "/")
			} else {
				params[strings.TrimSuffix(name, "...")] = ""
			}
			break
		}
		if i < len(pathSegs) {
			params[name] = pathSegs[i]
		}
	}
	return params
}
