package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

const defaultMaxRows = 10

// Querier is the database surface the shell drives.
type Querier interface {
	DatabaseInfo(ctx context.Context) (*store.DatabaseInfo, error)
	ListTables(ctx context.Context) ([]store.TableInfo, error)
	DescribeTable(ctx context.Context, name string) ([]store.ColumnInfo, error)
	RunQuery(ctx context.Context, sql string) (*store.QueryResult, error)
}

type LineReader interface {
	ReadLine(prompt string) (string, error)
}

type Shell struct {
	db      Querier
	in      LineReader
	out     io.Writer
	maxRows int
	logger  *slog.Logger
}

func New(db Querier, in LineReader, out io.Writer, maxRows int, logger *slog.Logger) *Shell {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &Shell{db: db, in: in, out: out, maxRows: maxRows, logger: logger}
}

// Run prints the connection banner and reads statements until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.banner(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, `Enter SQL statements. \dt lists tables, \d <table> describes one, quit exits.`)

	for {
		line, err := s.in.ReadLine("sql> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if !s.Execute(ctx, line) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Execute handles one input line and reports whether the shell should keep going.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return true
	case isQuit(input):
		return false
	case input == `\dt`:
		s.listTables(ctx)
	case input == `\d`:
		fmt.Fprintln(s.out, `Usage: \d <table>`)
	case strings.HasPrefix(input, `\d `):
		s.describe(ctx, strings.TrimSpace(strings.TrimPrefix(input, `\d `)))
	default:
		s.query(ctx, input)
	}
	return true
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func (s *Shell) banner(ctx context.Context) error {
	info, err := s.db.DatabaseInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Connected to database: %s\n", info.Name)
	fmt.Fprintf(s.out, "Server version: %s\n", info.Version)
	fmt.Fprintf(s.out, "Current user: %s\n\n", info.User)
	s.listTables(ctx)
	return nil
}

func (s *Shell) listTables(ctx context.Context) {
	tables, err := s.db.ListTables(ctx)
	if err != nil {
		s.printError(err)
		return
	}
	if len(tables) == 0 {
		fmt.Fprintln(s.out, "No tables found in the public schema.")
		return
	}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t.Name, t.Type})
	}
	fmt.Fprintf(s.out, "Tables (%d):\n%s\n", len(tables), renderTable([]string{"table_name", "table_type"}, rows))
}

func (s *Shell) describe(ctx context.Context, table string) {
	cols, err := s.db.DescribeTable(ctx, table)
	if err != nil {
		s.printError(err)
		return
	}
	if len(cols) == 0 {
		fmt.Fprintf(s.out, "Table %q not found.\n", table)
		return
	}
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		def := ""
		if c.Default != nil {
			def = *c.Default
		}
		rows = append(rows, []string{c.Name, c.DataType, c.Nullable, def})
	}
	fmt.Fprintf(s.out, "Table %s:\n%s\n", table, renderTable([]string{"column", "type", "nullable", "default"}, rows))
}

func (s *Shell) query(ctx context.Context, sql string) {
	s.logger.Debug("executing statement", "sql", sql)

	res, err := s.db.RunQuery(ctx, sql)
	if err != nil {
		s.printError(err)
		return
	}

	if len(res.Columns) == 0 {
		fmt.Fprintf(s.out, "Query OK, %d rows affected\n", res.RowsAffected)
		return
	}

	shown := res.Rows
	if len(shown) > s.maxRows {
		shown = shown[:s.maxRows]
	}
	rows := make([][]string, 0, len(shown))
	for _, r := range shown {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = formatValue(v)
		}
		rows = append(rows, cells)
	}
	fmt.Fprintln(s.out, renderTable(res.Columns, rows))
	if extra := len(res.Rows) - len(shown); extra > 0 {
		fmt.Fprintf(s.out, "... and %d more rows\n", extra)
	}
	fmt.Fprintf(s.out, "(%d rows)\n", len(res.Rows))
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}
