package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions are the file extensions treated as suites.
var Extensions = []string{".yaml", ".yml"}

// IsSuiteFile reports whether path has a suite extension.
func IsSuiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseError is returned when a suite file is not valid YAML or does not
// fit the suite format.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing suite: %v", e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile reads, parses and validates a suite file.
func LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse decodes a suite. Unknown fields are errors. An unnamed suite is
// named after its file.
func Parse(data []byte, path string) (*Suite, error) {
	s := &Suite{Path: path}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Err: errors.New("empty suite")}
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		recordLines(&root, s)
	}

	if s.Name == "" && path != "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s, nil
}

// recordLines copies the line of every checks item onto its Check.
func recordLines(root *yaml.Node, s *Suite) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "checks" {
			continue
		}
		items := doc.Content[i+1]
		for j, item := range items.Content {
			if j < len(s.Checks) && s.Checks[j] != nil {
				s.Checks[j].Line = item.Line
			}
		}
	}
}
