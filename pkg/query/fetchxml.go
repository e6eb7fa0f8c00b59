package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// compile renders a query expression as FetchXML. It is a pure, syntax
// directed transform: element and attribute order is fixed by the algorithm,
// so identical trees always produce byte-identical text. Structural
// invariants are validated at construction; the only check repeated here is
// condition value cardinality, because filter trees can be assembled without
// going through NewCondition.
func compile(q *QueryExpression) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<fetch version="1.0" outputformat="xml-platform" mapping="logical" distinct="`)
	sb.WriteString(strconv.FormatBool(q.distinct))
	sb.WriteString(`"`)
	if q.topCount > 0 {
		sb.WriteString(` top="`)
		sb.WriteString(strconv.Itoa(q.topCount))
		sb.WriteString(`"`)
	}
	sb.WriteString(`><entity name="`)
	writeEscaped(&sb, q.entityName)
	sb.WriteString(`">`)

	writeColumns(&sb, q.columns)

	if q.criteria != nil {
		if err := writeFilter(&sb, q.criteria); err != nil {
			return "", err
		}
	}

	for _, order := range q.orders {
		sb.WriteString(`<order attribute="`)
		writeEscaped(&sb, order.Attribute)
		sb.WriteString(`" descending="`)
		sb.WriteString(strconv.FormatBool(order.Order == Descending))
		sb.WriteString(`"/>`)
	}

	for _, link := range q.links {
		if err := writeLink(&sb, link); err != nil {
			return "", err
		}
	}

	sb.WriteString(`</entity></fetch>`)
	return sb.String(), nil
}

func writeColumns(sb *strings.Builder, columns ColumnSet) {
	if columns.All() {
		sb.WriteString(`<all-attributes/>`)
		return
	}
	for _, column := range columns.Columns() {
		sb.WriteString(`<attribute name="`)
		writeEscaped(sb, column)
		sb.WriteString(`"/>`)
	}
}

func writeFilter(sb *strings.Builder, f *FilterExpression) error {
	op := f.Operator
	if op == "" {
		op = And
	}
	sb.WriteString(`<filter type="`)
	sb.WriteString(string(op))
	sb.WriteString(`">`)

	for _, cond := range f.Conditions {
		if err := writeCondition(sb, cond); err != nil {
			return err
		}
	}
	for _, child := range f.Filters {
		if err := writeFilter(sb, child); err != nil {
			return err
		}
	}

	sb.WriteString(`</filter>`)
	return nil
}

func writeCondition(sb *strings.Builder, cond ConditionExpression) error {
	sb.WriteString(`<condition attribute="`)
	writeEscaped(sb, cond.Attribute)
	sb.WriteString(`" operator="`)
	sb.WriteString(string(cond.Operator))
	sb.WriteString(`"`)

	switch {
	case cond.Operator.takesNoValue():
		sb.WriteString(`/>`)
	case cond.Operator.takesList():
		sb.WriteString(`>`)
		for _, v := range cond.Values {
			sb.WriteString(`<value>`)
			writeEscaped(sb, formatValue(v))
			sb.WriteString(`</value>`)
		}
		sb.WriteString(`</condition>`)
	default:
		// A hand-built filter can carry a list of the wrong length; surface
		// the inconsistency instead of truncating it.
		if len(cond.Values) != 1 {
			return dverrors.NewError("compile", cond.Attribute,
				fmt.Errorf("%w: operator %s requires exactly one value, got %d",
					dverrors.ErrInvalidConditionValue, cond.Operator, len(cond.Values)))
		}
		sb.WriteString(` value="`)
		writeEscaped(sb, formatValue(cond.Values[0]))
		sb.WriteString(`"/>`)
	}
	return nil
}

func writeLink(sb *strings.Builder, link *LinkEntity) error {
	sb.WriteString(`<link-entity name="`)
	writeEscaped(sb, link.ToEntity)
	sb.WriteString(`" from="`)
	writeEscaped(sb, link.FromAttribute)
	sb.WriteString(`" to="`)
	writeEscaped(sb, link.ToAttribute)
	sb.WriteString(`" link-type="`)
	sb.WriteString(string(link.Join))
	sb.WriteString(`">`)

	if link.Columns != nil {
		writeColumns(sb, *link.Columns)
	}
	if link.Criteria != nil {
		if err := writeFilter(sb, link.Criteria); err != nil {
			return err
		}
	}
	for _, child := range link.Links {
		if err := writeLink(sb, child); err != nil {
			return err
		}
	}

	sb.WriteString(`</link-entity>`)
	return nil
}

var xmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&apos;",
)

func writeEscaped(sb *strings.Builder, s string) {
	xmlEscaper.WriteString(sb, s)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case uuid.UUID:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
