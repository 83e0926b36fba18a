package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/record"
)

// SQLCompiler compiles queryir predicates to SQLite.
//
// CRITICAL: every SELECT includes ORDER BY rowid so that row order matches
// insertion order, the order a store built from the rows would have.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts p to a WHERE clause fragment and its parameters.
// A nil predicate compiles to "1 = 1".
func (c *SQLCompiler) Compile(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.Compare:
		return c.compileCompare(pred)
	case *queryir.Compare:
		return c.compileCompare(*pred)
	case queryir.And:
		return c.compileJunction("AND", "1 = 1", pred.Predicates)
	case *queryir.And:
		return c.compileJunction("AND", "1 = 1", pred.Predicates)
	case queryir.Or:
		return c.compileJunction("OR", "1 = 0", pred.Predicates)
	case *queryir.Or:
		return c.compileJunction("OR", "1 = 0", pred.Predicates)
	case queryir.Not:
		return c.compileNot(pred.Predicate)
	case *queryir.Not:
		return c.compileNot(pred.Predicate)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// SelectAll builds a full query over table filtered by p.
func (c *SQLCompiler) SelectAll(table string, p queryir.Predicate) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("empty table name")
	}
	where, params, err := c.Compile(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY rowid ASC", QuoteIdent(table), where)
	return sql, params, nil
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	if eq.Field == "" {
		return "", nil, fmt.Errorf("equals: empty field name")
	}
	if _, isNull := eq.Value.(record.Null); isNull {
		return QuoteIdent(eq.Field) + " IS NULL", nil, nil
	}
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("equals %s: %w", eq.Field, err)
	}
	return QuoteIdent(eq.Field) + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (string, []any, error) {
	if cmp.Field == "" {
		return "", nil, fmt.Errorf("compare: empty field name")
	}
	if !cmp.Op.Valid() {
		return "", nil, fmt.Errorf("compare %s: unknown operator %q", cmp.Field, cmp.Op)
	}
	if _, isNull := cmp.Value.(record.Null); isNull {
		// Never true in memory either.
		return "1 = 0", nil, nil
	}
	param, err := valueToParam(cmp.Value)
	if err != nil {
		return "", nil, fmt.Errorf("compare %s: %w", cmp.Field, err)
	}

	column := QuoteIdent(cmp.Field)
	if cmp.OfLength {
		column = "length(" + column + ")"
	}
	return fmt.Sprintf("%s %s ?", column, cmp.Op), []any{param}, nil
}

func (c *SQLCompiler) compileJunction(op, empty string, preds []queryir.Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for i, p := range preds {
		if p == nil {
			return "", nil, fmt.Errorf("%s[%d]: nil operand", strings.ToLower(op), i)
		}
		sql, ps, err := c.Compile(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", params, nil
}

func (c *SQLCompiler) compileNot(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("not: nil operand")
	}
	sql, params, err := c.Compile(p)
	if err != nil {
		return "", nil, fmt.Errorf("not: %w", err)
	}
	return "NOT COALESCE(" + sql + ", 0)", params, nil
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// valueToParam converts a scalar record value to a driver parameter.
func valueToParam(v record.Value) (any, error) {
	switch val := v.(type) {
	case record.String:
		return string(val), nil
	case record.Int:
		return int64(val), nil
	case record.Bool:
		return bool(val), nil
	case record.Array, record.Object:
		return nil, fmt.Errorf("%T cannot be used as SQL parameter", v)
	case nil:
		return nil, fmt.Errorf("nil value")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
