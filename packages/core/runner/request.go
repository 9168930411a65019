package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers/controller"
)

// runRequest sends the check's request and applies its response matchers.
// A check without expectations passes on any 2xx response.
func (r *Runner) runRequest(ctx context.Context, sr *suiteRun, c *suite.Check) *CheckResult {
	cr := &CheckResult{
		Name:     c.Name,
		Kind:     suite.KindRequest,
		Captures: make(map[string]any),
	}

	req, err := sr.buildRequest(c.Request)
	if err != nil {
		return errored(cr, err)
	}
	cr.Method = req.Method
	cr.URL = req.BuildURL()

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return errored(cr, err)
	}
	cr.StatusCode = resp.StatusCode

	cr.Status = StatusPassed
	for _, m := range sr.responseMatchers(c.Expect) {
		res, err := m.Evaluate(resp)
		if err != nil {
			return errored(cr, err)
		}
		cr.Results = append(cr.Results, res)
		if !res.Passed {
			cr.Status = StatusFailed
		}
	}

	for name, path := range c.Capture {
		value := gjson.GetBytes(resp.Body, path)
		if !value.Exists() {
			sr.logger.Warn("capture path not found",
				zap.String("check", c.Name), zap.String("capture", name), zap.String("path", path))
			continue
		}
		cr.Captures[name] = value.Value()
		sr.resolver.SetCapture(c.Name, name, value.Value())
	}

	return cr
}

func errored(cr *CheckResult, err error) *CheckResult {
	cr.Status = StatusErrored
	cr.Error = err
	cr.Misconfigured = matchers.IsMisconfiguration(err)
	return cr
}

func (sr *suiteRun) resolveURL(raw string) string {
	u := sr.resolver.Resolve(raw)
	if strings.Contains(u, "://") || sr.baseURL == "" {
		return u
	}
	base := strings.TrimSuffix(sr.resolver.Resolve(sr.baseURL), "/")
	return base + "/" + strings.TrimPrefix(u, "/")
}

func (sr *suiteRun) headers(extra map[string]string) map[string]string {
	headers := make(map[string]string, len(sr.suite.Headers)+len(extra))
	for k, v := range sr.resolver.ResolveAll(sr.suite.Headers) {
		headers[k] = v
	}
	for k, v := range sr.resolver.ResolveAll(extra) {
		headers[k] = v
	}
	return headers
}

func (sr *suiteRun) buildRequest(def *suite.Request) (*http.Request, error) {
	req := http.NewRequest(def.MethodOrDefault(), sr.resolveURL(def.URL))
	for k, v := range sr.headers(def.Headers) {
		req.SetHeader(k, v)
	}
	for k, v := range sr.resolver.ResolveAll(def.Query) {
		req.SetQueryParam(k, v)
	}

	switch body := def.Body.(type) {
	case nil:
	case string:
		req.SetBody(sr.resolver.Resolve(body))
	default:
		if err := req.SetJSONBody(sr.resolver.ResolveValue(body)); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	if def.Timeout != "" {
		d, err := time.ParseDuration(def.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", def.Timeout, err)
		}
		req.SetTimeout(d)
	}
	return req, nil
}

func (sr *suiteRun) responseMatchers(e *suite.Expect) []matchers.Matcher[*http.Response] {
	if e.Empty() {
		return []matchers.Matcher[*http.Response]{controller.RespondWithStatus(string(controller.StatusSuccess))}
	}

	var ms []matchers.Matcher[*http.Response]
	if e.Status != "" {
		ms = append(ms, controller.RespondWithStatus(e.Status))
	}
	if e.RedirectTo != "" {
		ms = append(ms, controller.RedirectTo(sr.resolver.Resolve(e.RedirectTo)))
	}
	if e.ContentType != "" {
		ms = append(ms, controller.RespondWithContentType(e.ContentType))
	}
	for _, cookie := range e.Cookies {
		m := controller.SetCookie(cookie.Name)
		if cookie.Value != nil {
			m = m.To(sr.resolver.Resolve(*cookie.Value))
		}
		ms = append(ms, m)
	}

	paths := make([]string, 0, len(e.JSON))
	for path := range e.JSON {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		m := controller.RenderJSON(path)
		if expected := e.JSON[path]; expected != nil {
			m = m.To(sr.resolver.ResolveValue(expected))
		}
		ms = append(ms, m)
	}

	if e.Schema != "" {
		m := controller.MatchSchema(e.Schema)
		if sr.suite.Path != "" {
			m = m.InDir(filepath.Dir(sr.suite.Path))
		}
		ms = append(ms, m)
	}
	return ms
}
