// Package querybuilder renders the handful of postgres statements the match and
// dispatch stores need, with $n placeholders numbered in bind order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteByte('$')
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *sqlWriter) bindList(values []any) {
	w.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteByte(')')
}

func (w *sqlWriter) where(conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		cond(w)
	}
}

// Condition writes one AND-ed predicate of a WHERE clause.
type Condition func(w *sqlWriter)

func Eq(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" = ")
		w.bind(value)
	}
}

// NotIn renders "column NOT IN (...)"; with no values it matches every row, which is
// what a league replace with an empty snapshot needs.
func NotIn(column string, values []any) Condition {
	return func(w *sqlWriter) {
		if len(values) == 0 {
			w.WriteString("TRUE")
			return
		}
		w.WriteString(column)
		w.WriteString(" NOT IN ")
		w.bindList(values)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select: no columns")
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("select: no table")
	}

	var w sqlWriter
	fmt.Fprintf(&w, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.WriteString(" ORDER BY ")
		w.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to render a DELETE without a WHERE clause.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("delete: no table")
	case len(b.where) == 0:
		return "", nil, fmt.Errorf("delete from %s: refusing to delete without a where clause", b.table)
	}

	var w sqlWriter
	w.WriteString("DELETE FROM ")
	w.WriteString(b.table)
	w.where(b.where)
	return w.String(), w.args, nil
}
