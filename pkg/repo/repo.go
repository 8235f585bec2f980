package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the minimal querying surface shared by pgx.Tx and *pgxpool.Pool.
// Repositories depend on this so they run identically inside and outside an
// explicit transaction.
type Tx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Join concatenates non-empty SQL fragments with single spaces.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// JoinWhere builds a WHERE clause from AND-ed conditions. Returns "" when no
// conditions are given so it can be passed straight to Join.
func JoinWhere(conds ...string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

// Insert builds an INSERT statement with positional placeholders and an
// optional RETURNING column.
func Insert(table string, fields []string, returning ...string) string {
	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// Update builds an UPDATE statement assigning fields to $1..$n; the caller
// appends WHERE conditions referencing subsequent placeholders.
func Update(table string, fields []string, where string) string {
	assignments := make([]string, len(fields))
	for i, f := range fields {
		assignments[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	if where != "" {
		q += " WHERE " + where
	}
	return q
}

// Exists wraps a base query into SELECT EXISTS.
func Exists(base string) string {
	return fmt.Sprintf("SELECT EXISTS (%s)", base)
}

// FormatLimitOffset renders LIMIT/OFFSET fragments, omitting zero values.
func FormatLimitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf("OFFSET %d", offset)
	default:
		return ""
	}
}

// BatchInsertQueryN appends N value tuples to an INSERT prefix of the form
// "INSERT INTO t (a, b) VALUES" and returns the query plus flattened args.
func BatchInsertQueryN(prefix string, rows [][]any) (string, []any) {
	if len(rows) == 0 {
		return prefix, nil
	}
	width := len(rows[0])
	tuples := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		placeholders := make([]string, width)
		for j := range row {
			placeholders[j] = fmt.Sprintf("$%d", i*width+j+1)
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}
	return prefix + " " + strings.Join(tuples, ", "), args
}
