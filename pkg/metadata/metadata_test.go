package metadata_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

const entityDefinitions = `{
	"value": [
		{
			"LogicalName": "account",
			"LogicalCollectionName": "accounts",
			"SchemaName": "Account",
			"PrimaryIdAttribute": "accountid",
			"PrimaryNameAttribute": "name",
			"Attributes": [
				{"LogicalName": "name", "AttributeType": "String", "SchemaName": "Name"},
				{"LogicalName": "primarycontactid", "AttributeType": "Lookup", "SchemaName": "PrimaryContactId"}
			],
			"OneToManyRelationships": [
				{"ReferencedEntity": "account", "ReferencingEntity": "contact", "SchemaName": "account_contacts"}
			]
		},
		{
			"LogicalName": "contact",
			"LogicalCollectionName": "contacts",
			"SchemaName": "Contact",
			"PrimaryIdAttribute": "contactid",
			"PrimaryNameAttribute": "fullname",
			"Attributes": [
				{"LogicalName": "fullname", "AttributeType": "String", "SchemaName": "FullName"}
			]
		}
	]
}`

func TestParseOrg(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), true)
	require.NoError(t, err)

	assert.Len(t, org.Entities, 2)
	assert.True(t, org.ContainsRelationships)

	account, err := org.Entity("account")
	require.NoError(t, err)
	assert.Equal(t, "accounts", account.LogicalCollectionName)
	assert.Equal(t, "accountid", account.PrimaryIDAttribute)
	require.Len(t, account.OneToManyRelationships, 1)
	assert.Equal(t, "account_contacts", account.OneToManyRelationships[0].SchemaName)

	attr, err := account.Attribute("primarycontactid")
	require.NoError(t, err)
	assert.True(t, attr.IsLookup())
	assert.Equal(t, "PrimaryContactId", attr.SchemaName)
}

func TestParseOrgWithoutRelationshipsFlag(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), false)
	require.NoError(t, err)
	// The flag tracks what was requested, not what the payload happens to
	// contain.
	assert.False(t, org.ContainsRelationships)
}

func TestParseOrgEmpty(t *testing.T) {
	_, err := metadata.ParseOrg([]byte(`{"value": []}`), false)
	assert.ErrorIs(t, err, dverrors.ErrEntityMetadataNotFound)

	_, err = metadata.ParseOrg([]byte(`not json`), false)
	assert.Error(t, err)
}

func TestEntityLookupFailures(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), false)
	require.NoError(t, err)

	_, err = org.Entity("widget")
	assert.ErrorIs(t, err, dverrors.ErrEntityMetadataNotFound)

	_, err = org.Entity("")
	assert.ErrorIs(t, err, dverrors.ErrEmptyValue)

	account, err := org.Entity("account")
	require.NoError(t, err)
	_, err = account.Attribute("nope")
	assert.ErrorIs(t, err, dverrors.ErrAttributeMetadataNotFound)
}

func TestCollectionName(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), false)
	require.NoError(t, err)

	name, err := org.CollectionName("contact")
	require.NoError(t, err)
	assert.Equal(t, "contacts", name)

	_, err = org.CollectionName("widget")
	assert.ErrorIs(t, err, dverrors.ErrEntityMetadataNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, org.WriteSnapshot(&buf))

	loaded, err := metadata.ReadSnapshot(&buf)
	require.NoError(t, err)

	assert.Equal(t, org.ContainsRelationships, loaded.ContainsRelationships)
	require.Len(t, loaded.Entities, 2)
	assert.Equal(t, org.Entities[0].LogicalName, loaded.Entities[0].LogicalName)
	assert.Equal(t, org.Entities[0].Attributes, loaded.Entities[0].Attributes)
	assert.Equal(t, org.Entities[0].OneToManyRelationships, loaded.Entities[0].OneToManyRelationships)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	org, err := metadata.ParseOrg([]byte(entityDefinitions), false)
	require.NoError(t, err)

	path := t.TempDir() + "/metadata.yaml"
	require.NoError(t, org.SaveSnapshotFile(path))

	loaded, err := metadata.LoadSnapshotFile(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Entities, 2)
}
