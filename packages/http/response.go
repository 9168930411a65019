package http

import (
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Cookies    []*http.Cookie
	Body       []byte
	Duration   time.Duration
}

// FromRecorder captures what a handler wrote to rec.
func FromRecorder(rec *httptest.ResponseRecorder) *Response {
	resp, _ := FromHTTPResponse(rec.Result(), 0)
	return resp
}

// FromHTTPResponse reads and closes resp.Body.
func FromHTTPResponse(resp *http.Response, duration time.Duration) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	status := resp.Status
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     status,
		Headers:    headers,
		Cookies:    resp.Cookies(),
		Body:       body,
		Duration:   duration,
	}, nil
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Cookie returns the last cookie set under name.
func (r *Response) Cookie(name string) (*http.Cookie, bool) {
	var found *http.Cookie
	for _, c := range r.Cookies {
		if c.Name == name {
			found = c
		}
	}
	return found, found != nil
}

func (r *Response) Location() string {
	return r.Header("Location")
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// MediaType returns the content type without parameters.
func (r *Response) MediaType() string {
	ct := r.ContentType()
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.TrimSpace(strings.Split(ct, ";")[0])
	}
	return mt
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}
