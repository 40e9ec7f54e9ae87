package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// QueryResult holds the outcome of an ad-hoc statement. Columns is empty for
// statements that return no rows.
type QueryResult struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	Command      string
}

type TableInfo struct {
	Name string
	Type string
}

type ColumnInfo struct {
	Name     string
	DataType string
	Nullable string
	Default  *string
}

type DatabaseInfo struct {
	Name    string
	Version string
	User    string
}

// RunQuery executes an arbitrary statement over the simple protocol and collects every row.
func (s *Store) RunQuery(ctx context.Context, sql string) (*QueryResult, error) {
	rows, err := s.pool.Query(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := &QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tag := rows.CommandTag()
	res.RowsAffected = tag.RowsAffected()
	res.Command = tag.String()
	return res, nil
}

// ListTables returns the tables of the public schema.
func (s *Store) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DescribeTable returns the columns of every table named name, in ordinal order.
func (s *Store) DescribeTable(ctx context.Context, name string) ([]ColumnInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`, name)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, err)
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	var info DatabaseInfo
	err := s.pool.QueryRow(ctx, `SELECT current_database(), version(), current_user`).
		Scan(&info.Name, &info.Version, &info.User)
	if err != nil {
		return nil, fmt.Errorf("database info: %w", err)
	}
	return &info, nil
}
