package query

import (
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// OrderType is the sort direction of an order expression.
type OrderType string

const (
	Ascending  OrderType = "ASC"
	Descending OrderType = "DESC"
)

// OrderExpression sorts query results by a single attribute.
type OrderExpression struct {
	Attribute string
	Order     OrderType
}

// NewOrder builds a validated order expression. A zero order type defaults to
// ascending.
func NewOrder(attribute string, order OrderType) (OrderExpression, error) {
	if attribute == "" {
		return OrderExpression{}, dverrors.NewError("order", "", dverrors.ErrEmptyValue)
	}
	if order == "" {
		order = Ascending
	}
	return OrderExpression{Attribute: attribute, Order: order}, nil
}
