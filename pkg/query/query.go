package query

import (
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// QueryExpression is an immutable, fully validated query. Its FetchXML text
// is compiled once at build time; because the expression cannot be mutated
// afterwards, the cached text and the source tree never diverge.
type QueryExpression struct {
	entityName string
	columns    ColumnSet
	criteria   *FilterExpression
	orders     []OrderExpression
	links      []*LinkEntity
	topCount   int
	distinct   bool

	fetchXML string
}

// Builder assembles a QueryExpression. Methods chain; Build validates and
// compiles.
type Builder struct {
	entityName string
	columns    ColumnSet
	criteria   *FilterExpression
	orders     []OrderExpression
	links      []*LinkEntity
	topCount   int
	distinct   bool
}

// New starts a query against the given entity returning the given columns.
func New(entityName string, columns ColumnSet) *Builder {
	return &Builder{entityName: entityName, columns: columns}
}

// Criteria sets the query's top-level filter.
func (b *Builder) Criteria(f *FilterExpression) *Builder {
	b.criteria = f
	return b
}

// OrderBy appends an order expression.
func (b *Builder) OrderBy(o OrderExpression) *Builder {
	b.orders = append(b.orders, o)
	return b
}

// Link appends a top-level linked entity.
func (b *Builder) Link(l *LinkEntity) *Builder {
	b.links = append(b.links, l)
	return b
}

// Top limits the number of records returned.
func (b *Builder) Top(n int) *Builder {
	b.topCount = n
	return b
}

// Distinct requests distinct records.
func (b *Builder) Distinct(distinct bool) *Builder {
	b.distinct = distinct
	return b
}

// Build validates the assembled query and compiles its FetchXML.
func (b *Builder) Build() (*QueryExpression, error) {
	if b.entityName == "" {
		return nil, dverrors.NewError("query", "", dverrors.ErrEmptyValue)
	}
	if !b.columns.All() && len(b.columns.Columns()) == 0 {
		return nil, dverrors.NewError("query", b.entityName, dverrors.ErrInvalidColumnSet)
	}
	if b.topCount < 0 {
		return nil, dverrors.NewError("query", b.entityName, dverrors.ErrInvalidTopCount)
	}

	q := &QueryExpression{
		entityName: b.entityName,
		columns:    b.columns,
		criteria:   b.criteria,
		orders:     append([]OrderExpression(nil), b.orders...),
		links:      append([]*LinkEntity(nil), b.links...),
		topCount:   b.topCount,
		distinct:   b.distinct,
	}
	xml, err := compile(q)
	if err != nil {
		return nil, err
	}
	q.fetchXML = xml
	return q, nil
}

// EntityName returns the queried entity's logical name.
func (q *QueryExpression) EntityName() string {
	return q.entityName
}

// Columns returns the query's column set.
func (q *QueryExpression) Columns() ColumnSet {
	return q.columns
}

// FetchXML returns the compiled wire form of the query.
func (q *QueryExpression) FetchXML() string {
	return q.fetchXML
}
