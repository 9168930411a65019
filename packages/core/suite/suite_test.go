package suite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issuesSuite = `
name: issues
baseUrl: http://localhost:3000
headers:
  Accept: application/json
variables:
  title: crash
checks:
  - name: create issue
    tags: [smoke]
    request:
      method: post
      url: /issues
      body:
        title: "{{title}}"
    expect:
      status: 201
      contentType: application/json
      cookies:
        - name: session
        - name: theme
          value: dark
      json:
        id: ~
        title: crash
    capture:
      issueId: id

  - name: state is constrained
    depends: [create issue]
    inclusion:
      attribute: state
      in: [open, closed]
      allowNil: false
      subject:
        sqlite:
          database: "sqlite::memory:"
          setup: CREATE TABLE issues (state TEXT CHECK (state IN ('open', 'closed')))
          table: issues

  - name: priority range
    inclusion:
      attribute: priority
      range: {min: 1, max: 5}
      message: must be between 1 and 5
      subject:
        http:
          url: /issues/validate
          errorsPath: details
          attributes: {title: x}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(issuesSuite), "issues.yaml")
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, "issues", s.Name)
	assert.Equal(t, "http://localhost:3000", s.BaseURL)
	assert.Equal(t, "application/json", s.Headers["Accept"])
	require.Len(t, s.Checks, 3)

	create := s.Checks[0]
	assert.Equal(t, KindRequest, create.Kind())
	assert.True(t, create.HasTag("smoke"))
	assert.Equal(t, "POST", create.Request.MethodOrDefault())
	assert.Equal(t, map[string]any{"title": "{{title}}"}, create.Request.Body)
	assert.Equal(t, "201", create.Expect.Status)
	require.Len(t, create.Expect.Cookies, 2)
	assert.Nil(t, create.Expect.Cookies[0].Value)
	require.NotNil(t, create.Expect.Cookies[1].Value)
	assert.Equal(t, "dark", *create.Expect.Cookies[1].Value)
	assert.Contains(t, create.Expect.JSON, "id")
	assert.Nil(t, create.Expect.JSON["id"])
	assert.Equal(t, "id", create.Capture["issueId"])
	assert.Equal(t, 9, create.Line)

	state := s.Checks[1]
	assert.Equal(t, KindInclusion, state.Kind())
	assert.Equal(t, []string{"create issue"}, state.Depends)
	assert.Equal(t, []any{"open", "closed"}, state.Inclusion.In)
	require.NotNil(t, state.Inclusion.AllowNil)
	assert.False(t, *state.Inclusion.AllowNil)
	assert.Nil(t, state.Inclusion.AllowBlank)
	assert.Equal(t, "issues", state.Inclusion.Subject.SQLite.Table)

	priority := s.Checks[2]
	assert.Equal(t, &Range{Min: 1, Max: 5}, priority.Inclusion.Range)
	assert.Equal(t, "details", priority.Inclusion.Subject.HTTP.ErrorsPath)
}

func TestParse_NameFromFile(t *testing.T) {
	s, err := Parse([]byte("checks:\n  - name: a\n    request: {url: /}\n"), "dir/smoke.yml")
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	assert.Equal(t, "GET", s.Checks[0].Request.MethodOrDefault())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"syntax", "checks: [\n"},
		{"unknown field", "checks:\n  - name: a\n    reqest: {url: /}\n"},
		{"wrong type", "checks: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.yaml")
			require.Error(t, err)
			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Contains(t, err.Error(), "bad.yaml")
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		problem string
	}{
		{"no checks", "name: x\n", "suite has no checks"},
		{"missing name", "checks:\n  - request: {url: /}\n", "name is required"},
		{"duplicate", "checks:\n  - {name: a, request: {url: /}}\n  - {name: a, request: {url: /}}\n", "duplicate check name"},
		{"neither", "checks:\n  - name: a\n", "needs a request or an inclusion"},
		{"both", "checks:\n  - name: a\n    request: {url: /}\n    inclusion: {attribute: x, subject: {http: {url: /}}}\n", "has both request and inclusion"},
		{"no url", "checks:\n  - {name: a, request: {method: GET}}\n", "request url is required"},
		{"bad method", "checks:\n  - {name: a, request: {url: /, method: FETCH}}\n", `unknown method "FETCH"`},
		{"bad timeout", "checks:\n  - {name: a, request: {url: /, timeout: soon}}\n", `invalid timeout "soon"`},
		{"bad status", "checks:\n  - {name: a, request: {url: /}, expect: {status: fine}}\n", "unknown status"},
		{"cookie name", "checks:\n  - {name: a, request: {url: /}, expect: {cookies: [{value: x}]}}\n", "cookie expectation needs a name"},
		{"no attribute", "checks:\n  - {name: a, inclusion: {in: [1], subject: {http: {url: /}}}}\n", "inclusion attribute is required"},
		{"bad kind", "checks:\n  - {name: a, inclusion: {attribute: x, kind: date, subject: {http: {url: /}}}}\n", `unknown kind "date"`},
		{"no subject", "checks:\n  - {name: a, inclusion: {attribute: x}}\n", "needs an http or sqlite subject"},
		{"two subjects", "checks:\n  - {name: a, inclusion: {attribute: x, subject: {http: {url: /}, sqlite: {database: d, table: t}}}}\n", "subject has both"},
		{"sqlite table", "checks:\n  - {name: a, inclusion: {attribute: x, subject: {sqlite: {database: d}}}}\n", "sqlite subject table is required"},
		{"expect on inclusion", "checks:\n  - {name: a, expect: {status: ok}, inclusion: {attribute: x, subject: {http: {url: /}}}}\n", "only apply to request checks"},
		{"unknown dependency", "checks:\n  - {name: a, depends: [b], request: {url: /}}\n", `depends on unknown check "b"`},
		{"self dependency", "checks:\n  - {name: a, depends: [a], request: {url: /}}\n", "depends on itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data), "")
			require.NoError(t, err)

			err = s.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestValidate_ReportsLine(t *testing.T) {
	s, err := Parse([]byte("checks:\n  - name: ok\n    request: {url: /}\n  - name: broken\n    request: {method: GET}\n"), "s.yaml")
	require.NoError(t, err)

	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `check "broken" (line 4): request url is required`)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(issuesSuite), 0644))

	s, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, good, s.Path)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("checks:\n  - name: a\n"), 0644))
	_, err = LoadFile(bad)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIsSuiteFile(t *testing.T) {
	assert.True(t, IsSuiteFile("a.yaml"))
	assert.True(t, IsSuiteFile("dir/b.YML"))
	assert.False(t, IsSuiteFile("c.json"))
	assert.False(t, IsSuiteFile("yaml"))
}
