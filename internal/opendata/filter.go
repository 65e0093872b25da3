package opendata

import "strings"

// Op is a column-level match operator.
type Op int

const (
	// OpExact matches the column value exactly.
	OpExact Op = iota
	// OpContains matches a case-insensitive substring.
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpExact:
		return "exact"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Value  string
}

// Exact returns an exact-match filter.
func Exact(column, value string) Filter {
	return Filter{Column: column, Op: OpExact, Value: value}
}

// Contains returns a wildcard (substring) filter.
func Contains(column, value string) Filter {
	return Filter{Column: column, Op: OpContains, Value: value}
}

// SoQL renders the filter as a SoQL boolean expression.
func (f Filter) SoQL() string {
	if f.Op == OpContains {
		return "upper(" + f.Column + ") like " + quote("%"+strings.ToUpper(f.Value)+"%")
	}
	return f.Column + " = " + quote(f.Value)
}

// Where joins filters into a SoQL $where clause.
func Where(filters []Filter) string {
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		clauses = append(clauses, f.SoQL())
	}
	return strings.Join(clauses, " AND ")
}

// quote renders a SoQL string literal; single quotes are escaped by doubling.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
