// Package query provides the composable query expression model and its
// FetchXML compiler. Expressions validate their invariants at construction;
// compilation is a pure tree-to-text transform that never re-validates
// structure.
package query

import (
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// ColumnSet selects which attributes a query returns: either every column or
// an explicit, order-preserving list.
type ColumnSet struct {
	all     bool
	columns []string
}

// AllColumns returns the all-columns sentinel.
func AllColumns() ColumnSet {
	return ColumnSet{all: true}
}

// NewColumnSet returns an explicit column list. The list must be non-empty
// and every name must be non-empty.
func NewColumnSet(columns ...string) (ColumnSet, error) {
	if len(columns) == 0 {
		return ColumnSet{}, dverrors.NewError("columns", "", dverrors.ErrInvalidColumnSet)
	}
	for _, c := range columns {
		if c == "" {
			return ColumnSet{}, dverrors.NewError("columns", "", dverrors.ErrEmptyValue)
		}
	}
	out := make([]string, len(columns))
	copy(out, columns)
	return ColumnSet{columns: out}, nil
}

// All reports whether the set is the all-columns sentinel.
func (c ColumnSet) All() bool {
	return c.all
}

// Columns returns the explicit column list in declaration order.
func (c ColumnSet) Columns() []string {
	return c.columns
}
