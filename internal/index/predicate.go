package index

import (
	"fmt"
	"strings"
)

// Predicate is a boolean filter over chunk metadata, limited to equality and
// set membership so it stays translatable to any vector index's native
// filter language. The concrete nodes form a tagged tree: Equals, In, And.
type Predicate interface {
	isPredicate()
}

// Equals constrains a metadata field to a single value.
type Equals struct {
	Field string
	Value interface{}
}

// In constrains a metadata field to a set of values.
type In struct {
	Field  string
	Values []interface{}
}

// And is the conjunction of its child predicates.
type And struct {
	Preds []Predicate
}

func (Equals) isPredicate() {}
func (In) isPredicate()     {}
func (And) isPredicate()    {}

// Filterable metadata fields, mapped to their storage columns. Anything else
// is rejected so a malformed predicate surfaces to the caller instead of
// reaching the database.
var fieldColumns = map[string]string{
	"dataset":  "dataset",
	"doc_type": "doc_type",
	"season":   "season",
	"category": "category",
}

// ToSQL renders the predicate as a parameterized WHERE fragment. Placeholder
// numbering starts at argOffset+1. Returns the fragment and its arguments.
func ToSQL(p Predicate, argOffset int) (string, []interface{}, error) {
	if p == nil {
		return "", nil, nil
	}
	switch node := p.(type) {
	case Equals:
		col, ok := fieldColumns[node.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", node.Field)
		}
		return fmt.Sprintf("%s = $%d", col, argOffset+1), []interface{}{node.Value}, nil
	case In:
		col, ok := fieldColumns[node.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", node.Field)
		}
		if len(node.Values) == 0 {
			return "", nil, fmt.Errorf("membership filter on %q has no values", node.Field)
		}
		placeholders := make([]string, len(node.Values))
		args := make([]interface{}, len(node.Values))
		for i, v := range node.Values {
			placeholders[i] = fmt.Sprintf("$%d", argOffset+1+i)
			args[i] = v
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")), args, nil
	case And:
		var clauses []string
		var args []interface{}
		for _, child := range node.Preds {
			if child == nil {
				continue
			}
			clause, childArgs, err := ToSQL(child, argOffset+len(args))
			if err != nil {
				return "", nil, err
			}
			if clause == "" {
				continue
			}
			clauses = append(clauses, clause)
			args = append(args, childArgs...)
		}
		if len(clauses) == 0 {
			return "", nil, nil
		}
		return "(" + strings.Join(clauses, " AND ") + ")", args, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate node %T", p)
	}
}
