package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/hitmatch/packages/validation"
)

// Column describes one column of a table.
type Column struct {
	Name    string
	Type    string
	NotNull bool
}

// Kind maps the column's declared type to a value kind using SQLite's
// affinity rules.
func (c Column) Kind() validation.Kind {
	t := strings.ToUpper(c.Type)
	switch {
	case strings.Contains(t, "INT"):
		return validation.KindInteger
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return validation.KindDecimal
	default:
		return validation.KindString
	}
}

// Columns returns the columns of table in declaration order.
func (c *Client) Columns(ctx context.Context, table string) ([]Column, error) {
	result, err := c.Query(ctx, `SELECT name, type, "notnull" FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}

	columns := make([]Column, 0, len(result.Rows))
	for _, row := range result.Rows {
		name, _ := row["name"].(string)
		typ, _ := row["type"].(string)
		notNull, _ := row["notnull"].(int64)
		columns = append(columns, Column{Name: name, Type: typ, NotNull: notNull == 1})
	}
	return columns, nil
}

// TableSubject validates attribute values against a table's CHECK and
// NOT NULL constraints. Every Validate inserts one row inside a transaction
// that is always rolled back, so the table is never modified.
type TableSubject struct {
	client   *Client
	table    string
	ctx      context.Context
	columns  map[string]Column
	values   map[string]any
	dirty    map[string]bool
	firstErr error
}

// TableOption configures a TableSubject.
type TableOption func(*TableSubject)

// WithRow sets base values for columns the probes do not touch, typically
// to satisfy other NOT NULL or CHECK constraints.
func WithRow(row map[string]any) TableOption {
	return func(s *TableSubject) {
		for k, v := range row {
			s.values[k] = v
		}
	}
}

// NewTableSubject reads the columns of table and returns a subject over it.
func NewTableSubject(ctx context.Context, client *Client, table string, opts ...TableOption) (*TableSubject, error) {
	columns, err := client.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	s := &TableSubject{
		client:  client,
		table:   table,
		ctx:     ctx,
		columns: make(map[string]Column, len(columns)),
		values:  make(map[string]any),
		dirty:   make(map[string]bool),
	}
	for _, col := range columns {
		s.columns[col.Name] = col
	}
	for _, opt := range opts {
		opt(s)
	}
	for name := range s.values {
		if _, ok := s.columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s on %s", validation.ErrUnknownAttribute, name, table)
		}
	}
	return s, nil
}

func (s *TableSubject) SetAttribute(name string, value any) error {
	if _, ok := s.columns[name]; !ok {
		return fmt.Errorf("%w: %s on %s", validation.ErrUnknownAttribute, name, s.table)
	}
	s.values[name] = value
	s.dirty[name] = true
	return nil
}

func (s *TableSubject) Attribute(name string) (any, bool) {
	if _, ok := s.columns[name]; !ok {
		return nil, false
	}
	return s.values[name], true
}

func (s *TableSubject) AttributeKind(name string) validation.Kind {
	if col, ok := s.columns[name]; ok {
		return col.Kind()
	}
	return validation.KindString
}

// Err returns the first insert error that was not a constraint violation.
func (s *TableSubject) Err() error {
	return s.firstErr
}

func (s *TableSubject) Validate() validation.Errors {
	errs := validation.Errors{}

	err := s.tryInsert()
	if err == nil {
		return errs
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		if s.firstErr == nil {
			s.firstErr = err
		}
		for _, name := range s.attributes() {
			errs.Add(name, "insert failed: "+err.Error())
		}
		return errs
	}

	detail := sqliteErr.Error()
	for _, name := range s.violating(detail) {
		errs.Add(name, validation.MessageInclusion)
		errs.Add(name, detail)
	}
	return errs
}

func (s *TableSubject) tryInsert() error {
	tx, err := s.client.db.BeginTx(s.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)

	var stmt string
	args := make([]any, 0, len(names))
	if len(names) == 0 {
		stmt = "INSERT INTO " + quoteIdent(s.table) + " DEFAULT VALUES"
	} else {
		quoted := make([]string, len(names))
		for i, name := range names {
			quoted[i] = quoteIdent(name)
			args = append(args, s.values[name])
		}
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(s.table), strings.Join(quoted, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))
	}

	_, err = tx.ExecContext(s.ctx, stmt, args...)
	return err
}

var identifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// violating names the columns a constraint failure refers to. SQLite reports
// "NOT NULL constraint failed: table.column" and "CHECK constraint failed:
// <name or expression>". When no column can be identified, every attribute
// set through SetAttribute is blamed.
func (s *TableSubject) violating(detail string) []string {
	_, target, _ := strings.Cut(detail, ":")
	seen := make(map[string]bool)
	var names []string
	for _, word := range identifier.FindAllString(target, -1) {
		if _, ok := s.columns[word]; ok && !seen[word] {
			seen[word] = true
			names = append(names, word)
		}
	}
	if len(names) > 0 {
		return names
	}
	return s.attributes()
}

func (s *TableSubject) attributes() []string {
	names := make([]string, 0, len(s.dirty))
	for name := range s.dirty {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
