package suite

import (
	"strings"
)

// Suite is one YAML suite file.
type Suite struct {
	Name      string            `yaml:"name"`
	BaseURL   string            `yaml:"baseUrl,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Variables map[string]any    `yaml:"variables,omitempty"`
	Checks    []*Check          `yaml:"checks"`

	// Path is the file the suite was loaded from, if any.
	Path string `yaml:"-"`
}

// Check is either a request check or an inclusion check.
type Check struct {
	Name    string   `yaml:"name"`
	Tags    []string `yaml:"tags,omitempty"`
	Skip    string   `yaml:"skip,omitempty"`
	Only    bool     `yaml:"only,omitempty"`
	Depends []string `yaml:"depends,omitempty"`

	Request *Request          `yaml:"request,omitempty"`
	Expect  *Expect           `yaml:"expect,omitempty"`
	Capture map[string]string `yaml:"capture,omitempty"`

	Inclusion *Inclusion `yaml:"inclusion,omitempty"`

	// Line is where the check starts in its file.
	Line int `yaml:"-"`
}

// CheckKind names the two kinds of check.
type CheckKind string

const (
	KindRequest   CheckKind = "request"
	KindInclusion CheckKind = "inclusion"
)

func (c *Check) Kind() CheckKind {
	if c.Inclusion != nil {
		return KindInclusion
	}
	return KindRequest
}

func (c *Check) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Request is the HTTP request of a request check. A string Body is sent
// as is; any other Body is sent as JSON.
type Request struct {
	Method  string            `yaml:"method,omitempty"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Query   map[string]string `yaml:"query,omitempty"`
	Body    any               `yaml:"body,omitempty"`
	Timeout string            `yaml:"timeout,omitempty"`
}

// MethodOrDefault returns the upper-cased method, GET when unset.
func (r *Request) MethodOrDefault() string {
	if r.Method == "" {
		return "GET"
	}
	return strings.ToUpper(r.Method)
}

// Expect lists the response matchers of a request check. A nil value in
// JSON only requires the path to exist.
type Expect struct {
	Status      string         `yaml:"status,omitempty"`
	RedirectTo  string         `yaml:"redirectTo,omitempty"`
	ContentType string         `yaml:"contentType,omitempty"`
	Cookies     []CookieExpect `yaml:"cookies,omitempty"`
	JSON        map[string]any `yaml:"json,omitempty"`
	Schema      string         `yaml:"schema,omitempty"`
}

// Empty reports whether no matcher is configured.
func (e *Expect) Empty() bool {
	return e == nil || (e.Status == "" && e.RedirectTo == "" && e.ContentType == "" &&
		len(e.Cookies) == 0 && len(e.JSON) == 0 && e.Schema == "")
}

type CookieExpect struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value,omitempty"`
}

// Inclusion configures the inclusion matcher and its subject.
type Inclusion struct {
	Attribute    string  `yaml:"attribute"`
	In           []any   `yaml:"in,omitempty"`
	Range        *Range  `yaml:"range,omitempty"`
	AllowBlank   *bool   `yaml:"allowBlank,omitempty"`
	AllowNil     *bool   `yaml:"allowNil,omitempty"`
	Message      string  `yaml:"message,omitempty"`
	LowMessage   string  `yaml:"lowMessage,omitempty"`
	HighMessage  string  `yaml:"highMessage,omitempty"`
	Kind         string  `yaml:"kind,omitempty"`
	OutsideValue any     `yaml:"outsideValue,omitempty"`
	Subject      Subject `yaml:"subject"`
}

type Range struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// Subject selects where inclusion probes are validated. Exactly one field
// is set.
type Subject struct {
	HTTP   *HTTPSubject   `yaml:"http,omitempty"`
	SQLite *SQLiteSubject `yaml:"sqlite,omitempty"`
}

// HTTPSubject sends every probe's attributes as a JSON object.
type HTTPSubject struct {
	Method     string            `yaml:"method,omitempty"`
	URL        string            `yaml:"url"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	ErrorsPath string            `yaml:"errorsPath,omitempty"`
	Attributes map[string]any    `yaml:"attributes,omitempty"`
}

// SQLiteSubject inserts every probe into Table inside a rolled back
// transaction. Setup runs once before the check.
type SQLiteSubject struct {
	Database string         `yaml:"database"`
	Setup    string         `yaml:"setup,omitempty"`
	Table    string         `yaml:"table"`
	Row      map[string]any `yaml:"row,omitempty"`
}
