// Package relationship resolves which named relationship links two entity
// types when associating or disassociating records. A relationship is only
// inferred when it is structurally unambiguous; the resolver never guesses
// among multiple plausible candidates.
package relationship

import (
	"fmt"
	"strings"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

// Kind identifies which relationship list a resolved relationship came from.
type Kind string

const (
	OneToMany  Kind = "one-to-many"
	ManyToOne  Kind = "many-to-one"
	ManyToMany Kind = "many-to-many"
)

// Relationship is the resolved descriptor the request builders need.
type Relationship struct {
	Kind       Kind
	SchemaName string

	// Populated for one-to-many and many-to-one.
	ReferencedEntity  string
	ReferencingEntity string

	// Populated for many-to-many.
	Entity1LogicalName  string
	Entity2LogicalName  string
	IntersectEntityName string
}

// Resolve finds the single relationship linking the primary entity to the
// related entity. With an explicit schema name the match is case-insensitive
// and must be unique across all three kinds. Without one, candidates are
// collected per kind with role-correct participants; exactly one kind must
// yield exactly one candidate.
//
// The snapshot must have been fetched with relationships; callers holding a
// snapshot without them need to refresh before resolving.
func Resolve(primary, related string, org *metadata.OrgMetadata, schemaName string) (Relationship, error) {
	if primary == "" || related == "" {
		return Relationship{}, dverrors.NewError("resolve", primary, dverrors.ErrEmptyValue)
	}
	if !org.ContainsRelationships {
		return Relationship{}, dverrors.NewError("resolve", primary, dverrors.ErrRelationshipsNotFetched)
	}

	em, err := org.Entity(primary)
	if err != nil {
		return Relationship{}, err
	}

	oneToMany, manyToOne, manyToMany := candidates(em, primary, related, schemaName)

	if schemaName != "" {
		all := len(oneToMany) + len(manyToOne) + len(manyToMany)
		switch {
		case all == 0:
			return Relationship{}, dverrors.NewError("resolve", primary,
				fmt.Errorf("%w: no relationship %q between %s and %s",
					dverrors.ErrRelationshipNotFound, schemaName, primary, related))
		case all > 1:
			return Relationship{}, dverrors.NewError("resolve", primary,
				fmt.Errorf("%w: %d relationships named %q between %s and %s",
					dverrors.ErrAmbiguousRelationship, all, schemaName, primary, related))
		}
		return first(oneToMany, manyToOne, manyToMany), nil
	}

	kinds := 0
	for _, n := range []int{len(oneToMany), len(manyToOne), len(manyToMany)} {
		if n > 0 {
			kinds++
		}
	}
	total := len(oneToMany) + len(manyToOne) + len(manyToMany)
	switch {
	case total == 0:
		return Relationship{}, dverrors.NewError("resolve", primary,
			fmt.Errorf("%w: no relationship between %s and %s",
				dverrors.ErrRelationshipNotFound, primary, related))
	case kinds > 1 || total > 1:
		return Relationship{}, dverrors.NewError("resolve", primary,
			fmt.Errorf("%w: %d candidate relationships between %s and %s",
				dverrors.ErrAmbiguousRelationship, total, primary, related))
	}
	return first(oneToMany, manyToOne, manyToMany), nil
}

// candidates collects role-correct matches per kind. One-to-many: primary is
// the referenced entity and related the referencing one. Many-to-one is the
// mirror. Many-to-many accepts either ordering of the two participants. A
// non-empty schemaName additionally filters case-insensitively.
func candidates(em *metadata.EntityMetadata, primary, related, schemaName string) (
	[]Relationship, []Relationship, []Relationship) {

	nameMatches := func(candidate string) bool {
		return schemaName == "" || strings.EqualFold(candidate, schemaName)
	}

	var oneToMany []Relationship
	for _, rel := range em.OneToManyRelationships {
		if rel.ReferencedEntity == primary && rel.ReferencingEntity == related && nameMatches(rel.SchemaName) {
			oneToMany = append(oneToMany, Relationship{
				Kind:              OneToMany,
				SchemaName:        rel.SchemaName,
				ReferencedEntity:  rel.ReferencedEntity,
				ReferencingEntity: rel.ReferencingEntity,
			})
		}
	}

	var manyToOne []Relationship
	for _, rel := range em.ManyToOneRelationships {
		if rel.ReferencingEntity == primary && rel.ReferencedEntity == related && nameMatches(rel.SchemaName) {
			manyToOne = append(manyToOne, Relationship{
				Kind:              ManyToOne,
				SchemaName:        rel.SchemaName,
				ReferencedEntity:  rel.ReferencedEntity,
				ReferencingEntity: rel.ReferencingEntity,
			})
		}
	}

	var manyToMany []Relationship
	for _, rel := range em.ManyToManyRelationships {
		ordered := rel.Entity1LogicalName == primary && rel.Entity2LogicalName == related
		mirrored := rel.Entity1LogicalName == related && rel.Entity2LogicalName == primary
		if (ordered || mirrored) && nameMatches(rel.SchemaName) {
			manyToMany = append(manyToMany, Relationship{
				Kind:                ManyToMany,
				SchemaName:          rel.SchemaName,
				Entity1LogicalName:  rel.Entity1LogicalName,
				Entity2LogicalName:  rel.Entity2LogicalName,
				IntersectEntityName: rel.IntersectEntityName,
			})
		}
	}

	return oneToMany, manyToOne, manyToMany
}

func first(lists ...[]Relationship) Relationship {
	for _, list := range lists {
		if len(list) > 0 {
			return list[0]
		}
	}
	return Relationship{}
}
