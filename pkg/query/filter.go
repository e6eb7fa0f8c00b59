package query

// LogicalOperator combines the conditions of a filter.
type LogicalOperator string

const (
	And LogicalOperator = "and"
	Or  LogicalOperator = "or"
)

// FilterExpression combines conditions and nested filters under a single
// logical operator. Children are owned by their parent; the tree has no
// back-pointers and no depth limit.
type FilterExpression struct {
	Operator   LogicalOperator
	Conditions []ConditionExpression
	Filters    []*FilterExpression
}

// NewFilter creates an empty filter with the given combinator. A zero
// operator defaults to And.
func NewFilter(op LogicalOperator) *FilterExpression {
	if op == "" {
		op = And
	}
	return &FilterExpression{Operator: op}
}

// AddCondition appends a condition, preserving order.
func (f *FilterExpression) AddCondition(c ConditionExpression) *FilterExpression {
	f.Conditions = append(f.Conditions, c)
	return f
}

// AddFilter appends a nested filter, preserving order.
func (f *FilterExpression) AddFilter(child *FilterExpression) *FilterExpression {
	f.Filters = append(f.Filters, child)
	return f
}
