package query

import (
	"fmt"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// ConditionOperator enumerates the comparison operators a condition supports.
// The string value is the FetchXML wire token.
type ConditionOperator string

const (
	Equal          ConditionOperator = "eq"
	NotEqual       ConditionOperator = "ne"
	Greater        ConditionOperator = "gt"
	GreaterEqual   ConditionOperator = "ge"
	Less           ConditionOperator = "lt"
	LessEqual      ConditionOperator = "le"
	BeginsWith     ConditionOperator = "begins-with"
	NotBeginsWith  ConditionOperator = "not-begin-with"
	EndsWith       ConditionOperator = "ends-with"
	NotEndsWith    ConditionOperator = "not-ends-with"
	In             ConditionOperator = "in"
	NotIn          ConditionOperator = "not-in"
	Null           ConditionOperator = "null"
	NotNull        ConditionOperator = "not-null"
	Like           ConditionOperator = "like"
	NotLike        ConditionOperator = "not-like"
)

// maxInValues bounds the list size the server accepts for IN / NOT IN.
const maxInValues = 500

func (op ConditionOperator) valid() bool {
	switch op {
	case Equal, NotEqual, Greater, GreaterEqual, Less, LessEqual,
		BeginsWith, NotBeginsWith, EndsWith, NotEndsWith,
		In, NotIn, Null, NotNull, Like, NotLike:
		return true
	}
	return false
}

func (op ConditionOperator) takesList() bool {
	return op == In || op == NotIn
}

func (op ConditionOperator) takesNoValue() bool {
	return op == Null || op == NotNull
}

// ConditionExpression is a single attribute comparison. Values are normalized
// to a list at construction: empty for null operators, 1..500 elements for
// list operators, exactly one element otherwise.
type ConditionExpression struct {
	Attribute string
	Operator  ConditionOperator
	Values    []any
}

// NewCondition builds a validated condition. Null operators discard any
// values; IN / NOT IN require 1 to 500 values; every other operator requires
// exactly one.
func NewCondition(attribute string, op ConditionOperator, values ...any) (ConditionExpression, error) {
	if attribute == "" {
		return ConditionExpression{}, dverrors.NewError("condition", "", dverrors.ErrEmptyValue)
	}
	if !op.valid() {
		return ConditionExpression{}, dverrors.NewError("condition", attribute,
			fmt.Errorf("unknown operator %q", string(op)))
	}

	switch {
	case op.takesNoValue():
		values = nil
	case op.takesList():
		if len(values) == 0 {
			return ConditionExpression{}, dverrors.NewError("condition", attribute,
				fmt.Errorf("%w: %s requires at least one value", dverrors.ErrInvalidConditionValue, op))
		}
		if len(values) > maxInValues {
			return ConditionExpression{}, dverrors.NewError("condition", attribute,
				fmt.Errorf("%w: %s accepts at most %d values, got %d",
					dverrors.ErrInvalidConditionValue, op, maxInValues, len(values)))
		}
	default:
		if len(values) != 1 {
			return ConditionExpression{}, dverrors.NewError("condition", attribute,
				fmt.Errorf("%w: %s requires exactly one value, got %d",
					dverrors.ErrInvalidConditionValue, op, len(values)))
		}
	}

	var vals []any
	if len(values) > 0 {
		vals = make([]any, len(values))
		copy(vals, values)
	}
	return ConditionExpression{Attribute: attribute, Operator: op, Values: vals}, nil
}
