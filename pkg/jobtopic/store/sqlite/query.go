package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// Result is the tabular output of an ad hoc query.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Query runs a read-only statement for exploration. Only a single SELECT,
// WITH or PRAGMA statement is accepted; arguments are bound, never
// interpolated.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if err := checkReadOnly(query); err != nil {
		return nil, err
	}

	// query_only makes SQLite itself refuse writes hidden in a CTE.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, err
	}
	defer conn.ExecContext(context.Background(), "PRAGMA query_only = OFF")

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func checkReadOnly(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: multiple statements", internalerr.ErrInvalidInput)
	}
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty query", internalerr.ErrInvalidInput)
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return nil
	case "PRAGMA":
		if strings.Contains(q, "=") {
			return fmt.Errorf("%w: pragma assignment", internalerr.ErrInvalidInput)
		}
		return nil
	}
	return fmt.Errorf("%w: only read-only queries are allowed, got %s", internalerr.ErrInvalidInput, fields[0])
}

// ListTables returns the names of all tables, sorted.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	return s.loadStringColumn(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
}

// ColumnNames returns the columns of a table in declaration order.
func (s *Store) ColumnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := s.loadStringColumn(ctx,
		`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q: %w", table, internalerr.ErrNotFound)
	}
	return cols, nil
}
