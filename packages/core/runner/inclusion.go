package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/suite"
	"github.com/abdul-hamid-achik/hitmatch/packages/db"
	"github.com/abdul-hamid-achik/hitmatch/packages/http"
	"github.com/abdul-hamid-achik/hitmatch/packages/matchers/model"
	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
)

var errNoSubject = errors.New("inclusion check has no subject")

func (r *Runner) runInclusion(ctx context.Context, sr *suiteRun, c *suite.Check) *CheckResult {
	cr := &CheckResult{Name: c.Name, Kind: suite.KindInclusion}

	m, err := sr.inclusionMatcher(c.Inclusion)
	if err != nil {
		return errored(cr, err)
	}

	subject, cleanup, err := r.inclusionSubject(ctx, sr, c.Inclusion.Subject)
	if err != nil {
		return errored(cr, err)
	}
	defer cleanup()

	res, err := m.Evaluate(subject)
	if err != nil {
		return errored(cr, err)
	}
	if se, ok := subject.(validation.FailureReporter); ok && se.Err() != nil {
		return errored(cr, se.Err())
	}

	cr.Results = append(cr.Results, res)
	cr.Status = StatusPassed
	if !res.Passed {
		cr.Status = StatusFailed
	}
	return cr
}

func (sr *suiteRun) inclusionMatcher(in *suite.Inclusion) (model.InclusionMatcher, error) {
	m := model.EnsureInclusionOf(in.Attribute)

	if in.In != nil {
		values := make([]any, len(in.In))
		for i, v := range in.In {
			values[i] = sr.resolver.ResolveValue(v)
		}
		m = m.InArray(values...)
	}
	if in.Range != nil {
		m = m.InRange(in.Range.Min, in.Range.Max)
	}
	if in.AllowBlank != nil {
		m = m.AllowBlank(*in.AllowBlank)
	}
	if in.AllowNil != nil {
		m = m.AllowNil(*in.AllowNil)
	}

	m = m.WithMessage(in.Message).WithLowMessage(in.LowMessage).WithHighMessage(in.HighMessage)

	if in.Kind != "" {
		kind, ok := validation.ParseKind(in.Kind)
		if !ok {
			return m, fmt.Errorf("unknown kind %q", in.Kind)
		}
		m = m.OfKind(kind)
	}
	if in.OutsideValue != nil {
		m = m.WithOutsideValue(sr.resolver.ResolveValue(in.OutsideValue))
	}
	return m, nil
}

// inclusionSubject builds the subject; cleanup must be called when the
// check is done with it.
func (r *Runner) inclusionSubject(ctx context.Context, sr *suiteRun, sub suite.Subject) (validation.Validatable, func(), error) {
	switch {
	case sub.HTTP != nil:
		h := sub.HTTP
		opts := []http.RemoteOption{
			http.WithContext(ctx),
			http.WithRequestHeaders(sr.headers(h.Headers)),
		}
		if h.ErrorsPath != "" {
			opts = append(opts, http.WithErrorsPath(h.ErrorsPath))
		}
		if attrs, ok := sr.resolver.ResolveValue(anyMap(h.Attributes)).(map[string]any); ok {
			opts = append(opts, http.WithAttributes(attrs))
		}
		return http.NewRemoteSubject(r.client, h.Method, sr.resolveURL(h.URL), opts...), func() {}, nil

	case sub.SQLite != nil:
		s := sub.SQLite
		client, err := db.NewClient(ctx, sr.resolver.Resolve(s.Database))
		if err != nil {
			return nil, nil, err
		}
		if s.Setup != "" {
			if err := client.Exec(ctx, s.Setup); err != nil {
				_ = client.Close()
				return nil, nil, fmt.Errorf("sqlite setup: %w", err)
			}
		}
		var opts []db.TableOption
		if row, ok := sr.resolver.ResolveValue(anyMap(s.Row)).(map[string]any); ok && len(row) > 0 {
			opts = append(opts, db.WithRow(row))
		}
		subject, err := db.NewTableSubject(ctx, client, s.Table, opts...)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return subject, func() { _ = client.Close() }, nil

	default:
		return nil, nil, errNoSubject
	}
}
