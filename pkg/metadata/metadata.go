// Package metadata models the organization metadata snapshot the client
// fetches once per session: per-entity attribute lists and, optionally, the
// three relationship descriptor lists. Snapshots are read-only after
// construction; a refresh produces a new snapshot rather than mutating the
// old one, so in-flight work against the previous snapshot stays valid.
package metadata

import (
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// Attribute type tags the server reports for entity attributes.
const (
	AttributeTypeLookup   = "Lookup"
	AttributeTypeOwner    = "Owner"
	AttributeTypePicklist = "Picklist"
	AttributeTypeState    = "State"
	AttributeTypeStatus   = "Status"
	AttributeTypeBigInt   = "BigInt"
	AttributeTypeDateTime = "DateTime"
	AttributeTypeDecimal  = "Decimal"
	AttributeTypeString   = "String"
)

// AttributeMetadata describes a single entity attribute.
type AttributeMetadata struct {
	LogicalName   string `json:"LogicalName" yaml:"logical_name"`
	AttributeType string `json:"AttributeType" yaml:"attribute_type"`
	SchemaName    string `json:"SchemaName" yaml:"schema_name"`
}

// IsLookup reports whether the attribute holds a reference to another record.
func (a AttributeMetadata) IsLookup() bool {
	return a.AttributeType == AttributeTypeLookup || a.AttributeType == AttributeTypeOwner
}

// OneToManyRelationship describes a 1:N relationship where the referenced
// entity is the "one" side.
type OneToManyRelationship struct {
	ReferencedEntity  string `json:"ReferencedEntity" yaml:"referenced_entity"`
	ReferencingEntity string `json:"ReferencingEntity" yaml:"referencing_entity"`
	SchemaName        string `json:"SchemaName" yaml:"schema_name"`
}

// ManyToOneRelationship describes an N:1 relationship where the referencing
// entity is the "many" side.
type ManyToOneRelationship struct {
	ReferencedEntity  string `json:"ReferencedEntity" yaml:"referenced_entity"`
	ReferencingEntity string `json:"ReferencingEntity" yaml:"referencing_entity"`
	SchemaName        string `json:"SchemaName" yaml:"schema_name"`
}

// ManyToManyRelationship describes an N:N relationship through an intersect
// entity.
type ManyToManyRelationship struct {
	Entity1LogicalName  string `json:"Entity1LogicalName" yaml:"entity_1_logical_name"`
	Entity2LogicalName  string `json:"Entity2LogicalName" yaml:"entity_2_logical_name"`
	SchemaName          string `json:"SchemaName" yaml:"schema_name"`
	IntersectEntityName string `json:"IntersectEntityName" yaml:"intersect_entity_name"`
}

// EntityMetadata describes one entity type: names, attributes and, when the
// snapshot was fetched with relationships, its relationship lists.
type EntityMetadata struct {
	LogicalName           string              `json:"LogicalName" yaml:"logical_name"`
	LogicalCollectionName string              `json:"LogicalCollectionName" yaml:"logical_collection_name"`
	SchemaName            string              `json:"SchemaName" yaml:"schema_name"`
	PrimaryIDAttribute    string              `json:"PrimaryIdAttribute" yaml:"primary_id_attribute"`
	PrimaryNameAttribute  string              `json:"PrimaryNameAttribute" yaml:"primary_name_attribute"`
	Attributes            []AttributeMetadata `json:"Attributes" yaml:"attributes"`

	OneToManyRelationships  []OneToManyRelationship  `json:"OneToManyRelationships,omitempty" yaml:"one_to_many_relationships,omitempty"`
	ManyToOneRelationships  []ManyToOneRelationship  `json:"ManyToOneRelationships,omitempty" yaml:"many_to_one_relationships,omitempty"`
	ManyToManyRelationships []ManyToManyRelationship `json:"ManyToManyRelationships,omitempty" yaml:"many_to_many_relationships,omitempty"`
}

// Attribute returns the metadata for an attribute logical name.
func (e *EntityMetadata) Attribute(logicalName string) (AttributeMetadata, error) {
	for _, attr := range e.Attributes {
		if attr.LogicalName == logicalName {
			return attr, nil
		}
	}
	return AttributeMetadata{}, dverrors.NewError("metadata", e.LogicalName,
		dverrors.ErrAttributeMetadataNotFound)
}

// OrgMetadata is the immutable organization snapshot. ContainsRelationships
// distinguishes "relationships were never fetched" from "no relationships
// exist"; an empty list and an unfetched list are different things.
type OrgMetadata struct {
	Entities              []EntityMetadata `json:"value" yaml:"entities"`
	ContainsRelationships bool             `json:"-" yaml:"contains_relationships"`
}

// Entity returns the metadata for an entity logical name.
func (m *OrgMetadata) Entity(logicalName string) (*EntityMetadata, error) {
	if logicalName == "" {
		return nil, dverrors.NewError("metadata", "", dverrors.ErrEmptyValue)
	}
	for i := range m.Entities {
		if m.Entities[i].LogicalName == logicalName {
			return &m.Entities[i], nil
		}
	}
	return nil, dverrors.NewError("metadata", logicalName, dverrors.ErrEntityMetadataNotFound)
}

// CollectionName returns the plural route segment for an entity logical name.
func (m *OrgMetadata) CollectionName(logicalName string) (string, error) {
	em, err := m.Entity(logicalName)
	if err != nil {
		return "", err
	}
	if em.LogicalCollectionName == "" {
		return "", dverrors.NewError("metadata", logicalName, dverrors.ErrCollectionNameNotFound)
	}
	return em.LogicalCollectionName, nil
}
