package query

import (
	"fmt"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// JoinOperator is the join kind of a linked entity. The string value is the
// FetchXML wire token.
type JoinOperator string

const (
	Inner                        JoinOperator = "inner"
	Outer                        JoinOperator = "outer"
	Any                          JoinOperator = "any"
	NotAny                       JoinOperator = "not any"
	All                          JoinOperator = "all"
	NotAll                       JoinOperator = "not all"
	Exists                       JoinOperator = "exists"
	MatchFirstRowUsingCrossApply JoinOperator = "matchfirstrowusingcrossapply"
)

// LinkEntity joins a related entity into a query. Columns, Criteria and
// nested Links are optional and may be populated after construction, before
// the link is handed to a query builder.
type LinkEntity struct {
	FromEntity    string
	FromAttribute string
	ToEntity      string
	ToAttribute   string
	Join          JoinOperator

	Columns  *ColumnSet
	Criteria *FilterExpression
	Links    []*LinkEntity
}

// NewLinkEntity builds a validated link between two entities.
func NewLinkEntity(fromEntity, fromAttribute, toEntity, toAttribute string, join JoinOperator) (*LinkEntity, error) {
	if fromEntity == "" || fromAttribute == "" || toEntity == "" || toAttribute == "" {
		return nil, dverrors.NewError("link", fromEntity, dverrors.ErrEmptyValue)
	}
	switch join {
	case Inner, Outer, Any, NotAny, All, NotAll, Exists, MatchFirstRowUsingCrossApply:
	default:
		return nil, dverrors.NewError("link", fromEntity, fmt.Errorf("unknown join operator %q", string(join)))
	}
	return &LinkEntity{
		FromEntity:    fromEntity,
		FromAttribute: fromAttribute,
		ToEntity:      toEntity,
		ToAttribute:   toAttribute,
		Join:          join,
	}, nil
}

// AddLink appends a nested link, preserving order.
func (l *LinkEntity) AddLink(child *LinkEntity) *LinkEntity {
	l.Links = append(l.Links, child)
	return l
}
