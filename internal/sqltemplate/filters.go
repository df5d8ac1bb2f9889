package sqltemplate

import "fmt"

// filter is one optional WHERE/HAVING fragment: a "AND ..." clause with
// zero or more bound placeholders, or the empty clause when the
// corresponding entity kind wasn't present. Clauses never interpolate a
// value directly — every value travels as an arg bound to a "?" (§4.6
// "parameter binding is mandatory"; gorm expands a slice arg into the
// matching number of placeholders for IN (?)).
type filter struct {
	clause string
	args   []any
}

// eqOrIn renders "AND column = ?" for a single value or "AND column IN (?)"
// for several, per §4.4 "multi-value filters render as IN(…); single-value
// as =".
func eqOrIn(column string, values []string) filter {
	switch len(values) {
	case 0:
		return filter{}
	case 1:
		return filter{clause: fmt.Sprintf("AND %s = ?", column), args: []any{values[0]}}
	default:
		return filter{clause: fmt.Sprintf("AND %s IN (?)", column), args: []any{values}}
	}
}

func eqOrInInt(column string, values []int) filter {
	switch len(values) {
	case 0:
		return filter{}
	case 1:
		return filter{clause: fmt.Sprintf("AND %s = ?", column), args: []any{values[0]}}
	default:
		return filter{clause: fmt.Sprintf("AND %s IN (?)", column), args: []any{values}}
	}
}

// likeColumn renders "AND (column LIKE ? OR column LIKE ? ...)" for multiple
// patterns, or a single "AND column LIKE ?" for one — used for place
// filters, which match substrings rather than exact values.
func likeColumn(column string, values []string) filter {
	switch len(values) {
	case 0:
		return filter{}
	case 1:
		return filter{clause: fmt.Sprintf("AND %s LIKE ?", column), args: []any{"%" + values[0] + "%"}}
	default:
		clause := "AND ("
		args := make([]any, len(values))
		for i, v := range values {
			if i > 0 {
				clause += " OR "
			}
			clause += fmt.Sprintf("%s LIKE ?", column)
			args[i] = "%" + v + "%"
		}
		return filter{clause: clause + ")", args: args}
	}
}

// apply writes f's clause into the query if non-empty and appends its args.
func apply(args *[]any, f filter) string {
	if f.clause == "" {
		return ""
	}
	*args = append(*args, f.args...)
	return f.clause
}
