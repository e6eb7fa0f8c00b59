package entity

import (
	"fmt"

	"github.com/google/uuid"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// EntityReference points at a single record of another entity by identifier.
type EntityReference struct {
	LogicalName string
	ID          uuid.UUID
	Name        string
}

// NewEntityReference creates a reference to a record of the given entity.
func NewEntityReference(logicalName string, id uuid.UUID) (EntityReference, error) {
	if logicalName == "" {
		return EntityReference{}, dverrors.NewError("reference", "", dverrors.ErrEmptyValue)
	}
	return EntityReference{LogicalName: logicalName, ID: id}, nil
}

// ParseEntityReference creates a reference from a string identifier. The
// identifier must parse as a UUID.
func ParseEntityReference(logicalName, id string) (EntityReference, error) {
	if logicalName == "" {
		return EntityReference{}, dverrors.NewError("reference", "", dverrors.ErrEmptyValue)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return EntityReference{}, dverrors.NewError("reference", logicalName,
			fmt.Errorf("%w: %q", dverrors.ErrMalformedID, id))
	}
	return EntityReference{LogicalName: logicalName, ID: parsed}, nil
}

// String returns a human-readable form of the reference.
func (r EntityReference) String() string {
	if r.Name != "" {
		return fmt.Sprintf("%s(%s) %q", r.LogicalName, r.ID, r.Name)
	}
	return fmt.Sprintf("%s(%s)", r.LogicalName, r.ID)
}

// EntityReferenceCollection is a homogeneous set of references: every member
// shares the same entity logical name. Relationship resolution relies on this.
type EntityReferenceCollection struct {
	logicalName string
	refs        []EntityReference
}

// NewEntityReferenceCollection builds a collection from one or more references.
func NewEntityReferenceCollection(refs ...EntityReference) (*EntityReferenceCollection, error) {
	if len(refs) == 0 {
		return nil, dverrors.NewError("references", "", dverrors.ErrEmptyValue)
	}
	logical := refs[0].LogicalName
	for _, ref := range refs[1:] {
		if ref.LogicalName != logical {
			return nil, dverrors.NewError("references", logical,
				fmt.Errorf("%w: %s and %s", dverrors.ErrMixedReferences, logical, ref.LogicalName))
		}
	}
	out := make([]EntityReference, len(refs))
	copy(out, refs)
	return &EntityReferenceCollection{logicalName: logical, refs: out}, nil
}

// LogicalName returns the shared entity logical name of the collection.
func (c *EntityReferenceCollection) LogicalName() string {
	return c.logicalName
}

// References returns the members in insertion order.
func (c *EntityReferenceCollection) References() []EntityReference {
	return c.refs
}

// Len returns the number of references in the collection.
func (c *EntityReferenceCollection) Len() int {
	return len(c.refs)
}
