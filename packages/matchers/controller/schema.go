package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
)

// SchemaMatcher validates the response body against a JSON Schema.
type SchemaMatcher struct {
	schema  string
	baseDir string
}

// MatchSchema takes either the schema document itself or a path to it.
func MatchSchema(schema string) SchemaMatcher {
	return SchemaMatcher{schema: schema}
}

// InDir resolves relative schema paths against dir and refuses paths
// that escape it.
func (m SchemaMatcher) InDir(dir string) SchemaMatcher {
	m.baseDir = dir
	return m
}

func (m SchemaMatcher) Description() string {
	if m.isInline() {
		return "match JSON schema"
	}
	return "match JSON schema " + m.schema
}

func (m SchemaMatcher) isInline() bool {
	s := strings.TrimSpace(m.schema)
	return strings.HasPrefix(s, "{")
}

func (m SchemaMatcher) load() ([]byte, error) {
	if m.isInline() {
		return []byte(m.schema), nil
	}
	path := m.schema
	if !filepath.IsAbs(path) && m.baseDir != "" {
		path = filepath.Join(m.baseDir, path)
	}
	if m.baseDir != "" {
		if err := validatePathWithinBase(path, m.baseDir); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return data, nil
}

func (m SchemaMatcher) Evaluate(resp *http.Response) (*matchers.Result, error) {
	if strings.TrimSpace(m.schema) == "" {
		return nil, matchers.Misconfigured(m.Description(), matchers.ErrNoConstraint)
	}
	schemaData, err := m.load()
	if err != nil {
		return nil, matchers.Misconfigured(m.Description(), err)
	}

	if !gjson.ValidBytes(resp.Body) {
		return matchers.Fail("schema", "body", m.Description(),
			"expected response body to be JSON, got %q", truncate(resp.BodyString(), 80)), nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaData), gojsonschema.NewBytesLoader(resp.Body))
	if err != nil {
		return nil, matchers.Misconfigured(m.Description(), fmt.Errorf("schema validation error: %w", err))
	}
	if result.Valid() {
		return matchers.Pass("schema", "body", m.Description()), nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return matchers.Fail("schema", "body", m.Description(),
		"schema validation failed: %s", strings.Join(errs, "; ")), nil
}

func validatePathWithinBase(path, baseDir string) error {
	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}
	return nil
}
