package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/dusk-indust/belinda/internal/table"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// WriteSQLite stores f as table tableName in the SQLite database at path,
// replacing any table of that name. Sets are stored as roaring BLOBs, lists
// as JSON text and nulls as NULL.
func WriteSQLite(ctx context.Context, path, tableName string, f *table.Frame) error {
	if !tableNameRe.MatchString(tableName) {
		return fmt.Errorf("report: invalid table name %q", tableName)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("report: creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("report: opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("report: begin: %w", err)
	}
	defer tx.Rollback()

	cols := f.Columns()
	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name())
		defs[i] = names[i] + " " + sqliteType(c.Kind())
		marks[i] = "?"
	}
	stmts := []string{
		"DROP TABLE IF EXISTS " + tableName,
		fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", ")),
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("report: %s: %w", s, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("report: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for r := 0; r < f.Len(); r++ {
		for i, c := range cols {
			if args[i], err = sqliteValue(c, r); err != nil {
				return fmt.Errorf("report: row %d column %q: %w", r, c.Name(), err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("report: insert row %d: %w", r, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("report: commit: %w", err)
	}
	return nil
}

// WriteSQLiteFile is WriteSQLite with logging.
func (r *Reporter) WriteSQLiteFile(ctx context.Context, path, tableName string, f *table.Frame) error {
	if err := WriteSQLite(ctx, path, tableName, f); err != nil {
		return err
	}
	r.log.Info("wrote export",
		zap.String("kind", "sqlite"),
		zap.String("path", path),
		zap.String("table", tableName),
		zap.Int("rows", f.Len()))
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func sqliteType(k table.Kind) string {
	switch k {
	case table.KindInt64:
		return "INTEGER"
	case table.KindFloat64:
		return "REAL"
	case table.KindSet:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func sqliteValue(c table.Series, r int) (any, error) {
	switch s := c.(type) {
	case *table.Int64Series:
		return s.Values[r], nil
	case *table.Float64Series:
		if s.IsNull(r) {
			return nil, nil
		}
		return s.Values[r], nil
	case *table.StringSeries:
		return s.Values[r], nil
	case *table.SetSeries:
		return s.Values[r].MarshalBinary()
	default:
		v := c.Value(r)
		if v == nil {
			return nil, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}
