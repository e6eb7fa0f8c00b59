package codec

import (
	"fmt"

	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

// ODataBindSuffix is the wire key suffix for lookup bindings on writes.
const ODataBindSuffix = "@odata.bind"

// Encode converts a typed entity into the flat JSON body of a create or
// update request. An entity with no attributes encodes to a nil body, which
// callers must treat as "nothing to send" rather than a failure. Any error
// leaves the body unemitted; there is no partial output.
func Encode(e *entity.Entity, org *metadata.OrgMetadata) (map[string]any, error) {
	if e == nil {
		return nil, dverrors.NewError("encode", "", dverrors.ErrEmptyValue)
	}
	if e.Len() == 0 {
		return nil, nil
	}

	em, err := org.Entity(e.LogicalName)
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, e.Len())
	for _, name := range e.AttributeNames() {
		value, _ := e.Get(name)
		switch v := value.(type) {
		case entity.EntityReference:
			attr, attrErr := em.Attribute(name)
			if attrErr != nil {
				return nil, dverrors.NewError("encode", e.LogicalName,
					fmt.Errorf("attribute %q: %w", name, dverrors.ErrAttributeMetadataNotFound))
			}
			if !attr.IsLookup() {
				return nil, dverrors.NewError("encode", e.LogicalName,
					fmt.Errorf("attribute %q has type %s: %w", name, attr.AttributeType, dverrors.ErrNotLookup))
			}
			collection, collErr := org.CollectionName(v.LogicalName)
			if collErr != nil {
				return nil, dverrors.NewError("encode", e.LogicalName,
					fmt.Errorf("attribute %q target %q: %w", name, v.LogicalName, dverrors.ErrCollectionNameNotFound))
			}
			body[attr.SchemaName+ODataBindSuffix] = fmt.Sprintf("/%s(%s)", collection, v.ID)

		case entity.OptionSet:
			if !v.HasValue() {
				return nil, dverrors.NewError("encode", e.LogicalName,
					fmt.Errorf("attribute %q: option set without value: %w", name, dverrors.ErrEmptyValue))
			}
			// The label is display-only and never transmitted.
			body[name] = *v.Value

		default:
			body[name] = value
		}
	}

	return body, nil
}
