// Package entity defines the typed record model for Dataverse rows: entities,
// entity references, option sets and their collections.
package entity

import (
	"github.com/google/uuid"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// Entity is a typed record: a logical name, an optional identifier and an
// attribute bag. Attribute values are scalars, EntityReference or OptionSet.
// Iteration order over attributes is insertion order, so encoding a record is
// deterministic.
type Entity struct {
	LogicalName string
	ID          uuid.UUID

	attrs map[string]any
	order []string
}

// New creates an empty entity for the given logical name.
func New(logicalName string) (*Entity, error) {
	if logicalName == "" {
		return nil, dverrors.NewError("entity", "", dverrors.ErrEmptyValue)
	}
	return &Entity{
		LogicalName: logicalName,
		attrs:       make(map[string]any),
	}, nil
}

// Set stores an attribute value, preserving first-insertion order.
func (e *Entity) Set(name string, value any) {
	if e.attrs == nil {
		e.attrs = make(map[string]any)
	}
	if _, ok := e.attrs[name]; !ok {
		e.order = append(e.order, name)
	}
	e.attrs[name] = value
}

// Get returns an attribute value and whether it is present.
func (e *Entity) Get(name string) (any, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// GetReference returns an attribute as an EntityReference if it is one.
func (e *Entity) GetReference(name string) (EntityReference, bool) {
	ref, ok := e.attrs[name].(EntityReference)
	return ref, ok
}

// GetOptionSet returns an attribute as an OptionSet if it is one.
func (e *Entity) GetOptionSet(name string) (OptionSet, bool) {
	os, ok := e.attrs[name].(OptionSet)
	return os, ok
}

// AttributeNames returns attribute names in insertion order.
func (e *Entity) AttributeNames() []string {
	return e.order
}

// Len returns the number of attributes on the entity.
func (e *Entity) Len() int {
	return len(e.attrs)
}

// Reference returns an EntityReference pointing at this entity.
func (e *Entity) Reference() EntityReference {
	return EntityReference{LogicalName: e.LogicalName, ID: e.ID}
}

// EntityCollection holds the entities returned by a multi-record retrieval.
type EntityCollection struct {
	LogicalName string
	Entities    []*Entity
}
