package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
	"github.com/tidwall/gjson"
)

// DefaultErrorsPath is where RemoteSubject looks for validation messages in
// a rejected response body.
const DefaultErrorsPath = "errors"

// RemoteSubject validates attributes by sending them to an HTTP endpoint.
//
// Every Validate sends the current attributes as a JSON object. A 2xx reply
// means the attributes are valid. Any other reply is a rejection whose
// messages are read from the JSON body at <errorsPath>.<attribute>, either a
// string or an array of strings.
type RemoteSubject struct {
	ctx        context.Context
	client     *Client
	method     string
	url        string
	errorsPath string
	headers    map[string]string
	attrs      map[string]any
	kinds      map[string]validation.Kind
	firstErr   error
}

type RemoteOption func(*RemoteSubject)

// WithErrorsPath sets the gjson path of the errors object.
func WithErrorsPath(path string) RemoteOption {
	return func(s *RemoteSubject) {
		s.errorsPath = path
	}
}

// WithAttributes sets attributes sent with every probe.
func WithAttributes(attrs map[string]any) RemoteOption {
	return func(s *RemoteSubject) {
		for k, v := range attrs {
			s.attrs[k] = v
		}
	}
}

func WithRequestHeaders(headers map[string]string) RemoteOption {
	return func(s *RemoteSubject) {
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithAttributeKind declares the kind of an attribute.
func WithAttributeKind(name string, kind validation.Kind) RemoteOption {
	return func(s *RemoteSubject) {
		s.kinds[name] = kind
	}
}

func WithContext(ctx context.Context) RemoteOption {
	return func(s *RemoteSubject) {
		s.ctx = ctx
	}
}

func NewRemoteSubject(client *Client, method, url string, opts ...RemoteOption) *RemoteSubject {
	if method == "" {
		method = http.MethodPost
	}
	s := &RemoteSubject{
		ctx:        context.Background(),
		client:     client,
		method:     method,
		url:        url,
		errorsPath: DefaultErrorsPath,
		headers:    make(map[string]string),
		attrs:      make(map[string]any),
		kinds:      make(map[string]validation.Kind),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RemoteSubject) SetAttribute(name string, value any) error {
	s.attrs[name] = value
	return nil
}

func (s *RemoteSubject) Attribute(name string) (any, bool) {
	v, ok := s.attrs[name]
	return v, ok
}

func (s *RemoteSubject) AttributeKind(name string) validation.Kind {
	if k, ok := s.kinds[name]; ok {
		return k
	}
	if v, ok := s.attrs[name]; ok && v != nil {
		return validation.KindOf(v)
	}
	return validation.KindString
}

// Err returns the first transport error seen by Validate, if any.
func (s *RemoteSubject) Err() error {
	return s.firstErr
}

func (s *RemoteSubject) fail(err error) {
	if s.firstErr == nil {
		s.firstErr = err
	}
}

// Validate sends the attributes. A transport failure is recorded against
// every attribute so that no probe can pass on it, and the first one is kept for Err.
func (s *RemoteSubject) Validate() validation.Errors {
	errs := validation.Errors{}

	req := NewRequest(s.method, s.url)
	for k, v := range s.headers {
		req.SetHeader(k, v)
	}
	if err := req.SetJSONBody(s.attrs); err != nil {
		err = fmt.Errorf("encoding attributes: %w", err)
		s.fail(err)
		s.addToAll(errs, err.Error())
		return errs
	}

	resp, err := s.client.Do(s.ctx, req)
	if err != nil {
		s.fail(err)
		s.addToAll(errs, "request failed: "+err.Error())
		return errs
	}
	if resp.IsSuccess() {
		return errs
	}

	found := gjson.GetBytes(resp.Body, s.errorsPath)
	if found.IsObject() {
		found.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				for _, msg := range value.Array() {
					errs.Add(key.String(), msg.String())
				}
			} else {
				errs.Add(key.String(), value.String())
			}
			return true
		})
	}
	if errs.Empty() {
		s.addToAll(errs, fmt.Sprintf("rejected with status %d", resp.StatusCode))
	}
	return errs
}

func (s *RemoteSubject) addToAll(errs validation.Errors, msg string) {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs.Add(name, msg)
	}
}
