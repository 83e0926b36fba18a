package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"slices"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/querysql"
	"github.com/roach88/viewdb/internal/record"
)

// loadSQLite reads every row of table in rowid order. The database is
// opened read-only; a missing file is an error rather than a new database.
func loadSQLite(ctx context.Context, path, table string, where queryir.Predicate) ([]record.Object, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, newLoadError(ErrCodeRead, path, "open database", err)
	}

	query, params, err := querysql.NewSQLCompiler().SelectAll(table, where)
	if err != nil {
		return nil, newLoadError(ErrCodeFilter, path, "compile filter", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, newLoadError(ErrCodeRead, path, "open database", err)
	}
	defer db.Close()

	if err := checkColumns(ctx, db, table, where); err != nil {
		return nil, newLoadError(ErrCodeQuery, path, fmt.Sprintf("filter table %q", table), err)
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, newLoadError(ErrCodeQuery, path, fmt.Sprintf("query table %q", table), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, newLoadError(ErrCodeQuery, path, "read columns", err)
	}

	records := []record.Object{}
	for rows.Next() {
		obj, err := scanObject(rows, columns)
		if err != nil {
			return nil, newLoadError(ErrCodeDecode, path, fmt.Sprintf("row %d", len(records)), err)
		}
		records = append(records, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, newLoadError(ErrCodeQuery, path, "iterate rows", err)
	}
	return records, nil
}

// checkColumns fails when where names a column table does not have.
// sqlite reads an unknown double-quoted identifier as a string literal, so
// the filtered query alone would run against a constant.
func checkColumns(ctx context.Context, db *sql.DB, table string, where queryir.Predicate) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", querysql.QuoteIdent(table)))
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	for _, field := range queryir.Fields(where) {
		if !slices.Contains(columns, field) {
			return fmt.Errorf("unknown column %q", field)
		}
	}
	return nil
}

func scanObject(rows *sql.Rows, columns []string) (record.Object, error) {
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	obj := make(record.Object, len(columns))
	for i, col := range columns {
		if _, isReal := raw[i].(float64); isReal {
			return nil, fmt.Errorf("column %q: REAL values are not supported", col)
		}
		v, err := record.FromAny(raw[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		obj[col] = v
	}
	return obj, nil
}
