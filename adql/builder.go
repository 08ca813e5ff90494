package adql

import (
	"fmt"
	"strings"
)

// SelectBuilder assembles a SELECT statement from parts. The zero value is
// ready to use; Build fails rather than emit an incomplete statement.
type SelectBuilder struct {
	distinct bool
	top      int
	columns  []string
	from     string
	joins    []string
	where    []string
	orderBy  []string
}

// Select starts a builder with the given output columns.
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// Distinct marks the query SELECT DISTINCT.
func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.distinct = true
	return b
}

// Top limits the result to n rows. Zero omits the TOP clause.
func (b *SelectBuilder) Top(n int) *SelectBuilder {
	b.top = n
	return b
}

// From sets the base table.
func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// NaturalJoin appends a NATURAL JOIN with the given table. RegTAP's
// relational tables share key columns (ivoid, cap_index), which is what
// makes the natural join form work for registry queries.
func (b *SelectBuilder) NaturalJoin(table string) *SelectBuilder {
	b.joins = append(b.joins, table)
	return b
}

// Where appends a predicate. All predicates are ANDed, each wrapped in
// parentheses so OR groups inside fragments cannot leak.
func (b *SelectBuilder) Where(predicate string) *SelectBuilder {
	if predicate != "" {
		b.where = append(b.where, predicate)
	}
	return b
}

// OrderBy appends ordering columns.
func (b *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

// Build renders the statement. The output is deterministic for a given
// sequence of calls.
func (b *SelectBuilder) Build() (string, error) {
	if len(b.columns) == 0 {
		return "", fmt.Errorf("adql: select needs at least one column")
	}
	if b.from == "" {
		return "", fmt.Errorf("adql: select needs a FROM table")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.top > 0 {
		fmt.Fprintf(&sb, "TOP %d ", b.top)
	}
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)
	for _, j := range b.joins {
		sb.WriteString(" NATURAL JOIN ")
		sb.WriteString(j)
	}
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		for i, p := range b.where {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString("(")
			sb.WriteString(p)
			sb.WriteString(")")
		}
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return sb.String(), nil
}

// MustBuild renders the statement or panics. Use only for fixed queries.
func (b *SelectBuilder) MustBuild() string {
	q, err := b.Build()
	if err != nil {
		panic(err)
	}
	return q
}
