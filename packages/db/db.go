// Package db provides SQLite connectivity for hitmatch: a small query client
// and a validation subject backed by a table's constraints.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// QueryResult represents the result of a database query
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// Client represents a database client
type Client struct {
	db           *sql.DB
	driverName   string
	dataSource   string
	queryTimeout time.Duration
}

// NewClient opens and pings the database named by connectionString.
func NewClient(ctx context.Context, connectionString string) (*Client, error) {
	driver, dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Client{
		db:           db,
		driverName:   driver,
		dataSource:   dsn,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Exec runs one or more statements, typically schema setup.
func (c *Client) Exec(ctx context.Context, stmt string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

// Query executes a SQL query and returns the result
func (c *Client) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any)
		for i, col := range columns {
			val := values[i]
			// Convert []byte to string for better handling
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// parseConnectionString parses a connection string into driver and DSN
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./test.db
// - sqlite::memory:
// - file:test.db?cache=shared
func parseConnectionString(connStr string) (driver string, dsn string, err error) {
	connStr = strings.TrimSpace(connStr)

	if strings.HasPrefix(connStr, "sqlite://") {
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	} else if strings.HasPrefix(connStr, "sqlite:") {
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	} else if strings.HasPrefix(connStr, "file:") {
		dsn = connStr
	} else {
		u, err := url.Parse(connStr)
		if err != nil {
			return "", "", fmt.Errorf("invalid connection string: %w", err)
		}
		if u.Scheme == "" {
			return "", "", fmt.Errorf("invalid connection string %q: missing scheme", connStr)
		}
		return "", "", fmt.Errorf("unsupported database scheme: %s", u.Scheme)
	}

	if dsn == "" {
		return "", "", fmt.Errorf("invalid connection string %q: missing path", connStr)
	}
	return "sqlite3", dsn, nil
}
