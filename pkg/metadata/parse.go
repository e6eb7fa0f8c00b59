package metadata

import (
	"encoding/json"
	"fmt"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// ParseOrg builds a snapshot from the EntityDefinitions response body.
// withRelationships records whether the fetch expanded the relationship
// lists; the parser cannot tell an unexpanded list from an empty one.
func ParseOrg(body []byte, withRelationships bool) (*OrgMetadata, error) {
	var org OrgMetadata
	if err := json.Unmarshal(body, &org); err != nil {
		return nil, dverrors.NewError("metadata", "", fmt.Errorf("parse entity definitions: %w", err))
	}
	if len(org.Entities) == 0 {
		return nil, dverrors.NewError("metadata", "", dverrors.ErrEntityMetadataNotFound)
	}
	org.ContainsRelationships = withRelationships
	return &org, nil
}
