package codec

import (
	"fmt"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
	"github.com/crmkit/dataverse/pkg/query"
)

// TransformColumnSet rewrites the selected columns into their wire names for
// a $select clause. Lookup-typed columns read back as "_name_value"; other
// columns keep their logical name. An all-columns set transforms to nil,
// meaning no $select at all. A column with no attribute metadata is an error.
func TransformColumnSet(em *metadata.EntityMetadata, columns query.ColumnSet) ([]string, error) {
	if columns.All() {
		return nil, nil
	}
	out := make([]string, 0, len(columns.Columns()))
	for _, column := range columns.Columns() {
		attr, err := em.Attribute(column)
		if err != nil {
			return nil, dverrors.NewError("columns", em.LogicalName,
				fmt.Errorf("column %q: %w", column, dverrors.ErrAttributeMetadataNotFound))
		}
		if attr.IsLookup() {
			out = append(out, "_"+column+"_value")
			continue
		}
		out = append(out, column)
	}
	return out, nil
}
