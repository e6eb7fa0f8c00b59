// Package errors defines error types and utilities for the Dataverse client
package errors

import (
	"errors"
	"fmt"
)

// Common errors that can occur in Dataverse operations
var (
	// ErrEmptyValue is returned when a required value is empty
	ErrEmptyValue = errors.New("empty value")

	// ErrInvalidColumnSet is returned when a column set is neither the
	// all-columns sentinel nor a non-empty column list
	ErrInvalidColumnSet = errors.New("invalid column set")

	// ErrInvalidConditionValue is returned when a condition value violates the
	// operator's cardinality rules
	ErrInvalidConditionValue = errors.New("invalid condition value")

	// ErrInvalidTopCount is returned when a query's top count is not positive
	ErrInvalidTopCount = errors.New("invalid top count")

	// ErrMalformedID is returned when a record identifier cannot be parsed as a UUID
	ErrMalformedID = errors.New("malformed record identifier")

	// ErrEntityMetadataNotFound is returned when no metadata exists for an
	// entity logical name
	ErrEntityMetadataNotFound = errors.New("entity metadata not found")

	// ErrAttributeMetadataNotFound is returned when no metadata exists for an
	// attribute logical name
	ErrAttributeMetadataNotFound = errors.New("attribute metadata not found")

	// ErrCollectionNameNotFound is returned when an entity's collection name
	// cannot be resolved from metadata
	ErrCollectionNameNotFound = errors.New("collection name not found")

	// ErrNotLookup is returned when a reference-valued attribute is not a
	// lookup according to metadata
	ErrNotLookup = errors.New("attribute is not a lookup")

	// ErrRelationshipsNotFetched is returned when relationship resolution is
	// attempted against a metadata snapshot fetched without relationships
	ErrRelationshipsNotFetched = errors.New("relationship metadata not fetched")

	// ErrRelationshipNotFound is returned when no relationship matches the
	// requested entity pair
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrAmbiguousRelationship is returned when more than one relationship
	// matches the requested entity pair
	ErrAmbiguousRelationship = errors.New("ambiguous relationship")

	// ErrNothingToSend is returned when an operation requires a request body
	// but the entity has no attributes
	ErrNothingToSend = errors.New("entity has no attributes to send")

	// ErrMixedReferences is returned when a reference collection contains more
	// than one entity logical name
	ErrMixedReferences = errors.New("mixed entity references")
)

// DataverseError represents a detailed error with context
type DataverseError struct {
	Op     string // Operation that failed
	Entity string // Entity logical name
	Err    error  // Underlying error
}

// Error implements the error interface
func (e *DataverseError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("dataverse: %s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("dataverse: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *DataverseError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *DataverseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new DataverseError
func NewError(op, entity string, err error) *DataverseError {
	return &DataverseError{
		Op:     op,
		Entity: entity,
		Err:    err,
	}
}

// IsNotFound checks if an error indicates missing metadata
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityMetadataNotFound) ||
		errors.Is(err, ErrAttributeMetadataNotFound) ||
		errors.Is(err, ErrRelationshipNotFound)
}

// IsAmbiguous checks if an error indicates an ambiguous relationship match
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguousRelationship)
}
