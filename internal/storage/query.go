package storage

import (
	"strconv"
	"strings"
)

// where is a list of ANDed predicates with their bind arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// in adds "column IN (?, ...)". An empty list matches nothing.
func (w *where) in(column string, ids []int64) {
	if len(ids) == 0 {
		w.add("1 = 0")
		return
	}
	marks := make([]string, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		w.args = append(w.args, id)
	}
	w.clauses = append(w.clauses, column+" IN ("+strings.Join(marks, ", ")+")")
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// assignments is the SET list of an UPDATE.
type assignments struct {
	columns []string
	args    []any
}

func (a *assignments) set(column string, value any) {
	a.columns = append(a.columns, column+" = ?")
	a.args = append(a.args, value)
}

func (a *assignments) String() string {
	return strings.Join(a.columns, ", ")
}

// selectQuery assembles a SELECT from parts.
type selectQuery struct {
	columns string
	from    string
	where   where
	groupBy string
	orderBy string
	limit   int
}

func (q *selectQuery) build() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.columns)
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	b.WriteString(q.where.String())
	if q.groupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(q.groupBy)
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	return b.String(), q.where.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// like returns a case-insensitive substring predicate over column. SQLite's
// LIKE already ignores ASCII case; Postgres needs ILIKE.
func (db *DB) like(column string) string {
	op := "LIKE"
	if db.driver == DriverPostgres {
		op = "ILIKE"
	}
	return column + " " + op + ` ? ESCAPE '\'`
}
