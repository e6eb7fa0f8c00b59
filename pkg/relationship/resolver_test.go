package relationship_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
	"github.com/crmkit/dataverse/pkg/relationship"
)

func orgWith(em metadata.EntityMetadata) *metadata.OrgMetadata {
	return &metadata.OrgMetadata{
		Entities:              []metadata.EntityMetadata{em},
		ContainsRelationships: true,
	}
}

func TestResolveRequiresRelationshipMetadata(t *testing.T) {
	org := &metadata.OrgMetadata{
		Entities: []metadata.EntityMetadata{{LogicalName: "account"}},
	}

	_, err := relationship.Resolve("account", "contact", org, "")
	assert.ErrorIs(t, err, dverrors.ErrRelationshipsNotFetched)
}

func TestResolveInfersSingleOneToMany(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{
		LogicalName: "account",
		OneToManyRelationships: []metadata.OneToManyRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "account_contacts"},
			{ReferencedEntity: "account", ReferencingEntity: "opportunity", SchemaName: "account_opportunities"},
		},
	})

	rel, err := relationship.Resolve("account", "contact", org, "")
	require.NoError(t, err)
	assert.Equal(t, relationship.OneToMany, rel.Kind)
	assert.Equal(t, "account_contacts", rel.SchemaName)
}

func TestResolveAmbiguousWithinKind(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{
		LogicalName: "account",
		OneToManyRelationships: []metadata.OneToManyRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "account_contacts"},
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "account_billing_contacts"},
		},
	})

	_, err := relationship.Resolve("account", "contact", org, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, dverrors.ErrAmbiguousRelationship)
	assert.Contains(t, err.Error(), "2 candidate")

	// An explicit schema name disambiguates to either entry.
	rel, err := relationship.Resolve("account", "contact", org, "account_billing_contacts")
	require.NoError(t, err)
	assert.Equal(t, "account_billing_contacts", rel.SchemaName)

	rel, err = relationship.Resolve("account", "contact", org, "account_contacts")
	require.NoError(t, err)
	assert.Equal(t, "account_contacts", rel.SchemaName)
}

func TestResolveAmbiguousAcrossKinds(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{
		LogicalName: "account",
		OneToManyRelationships: []metadata.OneToManyRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "account_contacts"},
		},
		ManyToManyRelationships: []metadata.ManyToManyRelationship{
			{Entity1LogicalName: "account", Entity2LogicalName: "contact", SchemaName: "accounts_contacts", IntersectEntityName: "accountcontact"},
		},
	})

	_, err := relationship.Resolve("account", "contact", org, "")
	assert.ErrorIs(t, err, dverrors.ErrAmbiguousRelationship)
}

func TestResolveNoCandidates(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{LogicalName: "account"})

	_, err := relationship.Resolve("account", "contact", org, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, dverrors.ErrRelationshipNotFound)
	assert.Contains(t, err.Error(), "account")
	assert.Contains(t, err.Error(), "contact")
}

func TestResolveManyToOneRoles(t *testing.T) {
	// contact is the referencing (many) side; resolving with contact as
	// primary must match, with account as primary must not.
	em := metadata.EntityMetadata{
		LogicalName: "contact",
		ManyToOneRelationships: []metadata.ManyToOneRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "contact_account"},
		},
	}
	org := orgWith(em)

	rel, err := relationship.Resolve("contact", "account", org, "")
	require.NoError(t, err)
	assert.Equal(t, relationship.ManyToOne, rel.Kind)

	org.Entities = append(org.Entities, metadata.EntityMetadata{LogicalName: "account"})
	_, err = relationship.Resolve("account", "contact", org, "")
	assert.ErrorIs(t, err, dverrors.ErrRelationshipNotFound)
}

func TestResolveManyToManyEitherOrdering(t *testing.T) {
	rel := metadata.ManyToManyRelationship{
		Entity1LogicalName:  "account",
		Entity2LogicalName:  "lead",
		SchemaName:          "accountleads_association",
		IntersectEntityName: "accountleads",
	}

	for _, tc := range []struct {
		name             string
		primary, related string
	}{
		{"declared order", "account", "lead"},
		{"mirrored order", "lead", "account"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			org := orgWith(metadata.EntityMetadata{
				LogicalName:             tc.primary,
				ManyToManyRelationships: []metadata.ManyToManyRelationship{rel},
			})
			got, err := relationship.Resolve(tc.primary, tc.related, org, "")
			require.NoError(t, err)
			assert.Equal(t, relationship.ManyToMany, got.Kind)
			assert.Equal(t, "accountleads", got.IntersectEntityName)
		})
	}
}

func TestResolveExplicitNameCaseInsensitive(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{
		LogicalName: "account",
		OneToManyRelationships: []metadata.OneToManyRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "Account_Contacts"},
		},
	})

	rel, err := relationship.Resolve("account", "contact", org, "account_contacts")
	require.NoError(t, err)
	assert.Equal(t, "Account_Contacts", rel.SchemaName)
}

func TestResolveExplicitNameNotFound(t *testing.T) {
	org := orgWith(metadata.EntityMetadata{
		LogicalName: "account",
		OneToManyRelationships: []metadata.OneToManyRelationship{
			{ReferencedEntity: "account", ReferencingEntity: "contact", SchemaName: "account_contacts"},
		},
	})

	_, err := relationship.Resolve("account", "contact", org, "no_such_relationship")
	require.Error(t, err)
	assert.ErrorIs(t, err, dverrors.ErrRelationshipNotFound)
	assert.Contains(t, err.Error(), "no_such_relationship")
}

func TestResolveUnknownPrimaryEntity(t *testing.T) {
	org := &metadata.OrgMetadata{
		Entities:              []metadata.EntityMetadata{{LogicalName: "account"}},
		ContainsRelationships: true,
	}

	_, err := relationship.Resolve("widget", "contact", org, "")
	assert.ErrorIs(t, err, dverrors.ErrEntityMetadataNotFound)
}
