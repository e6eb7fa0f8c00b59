package entity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

func TestEntityAttributeOrder(t *testing.T) {
	e, err := entity.New("contact")
	require.NoError(t, err)

	e.Set("firstname", "Jane")
	e.Set("lastname", "Doe")
	e.Set("firstname", "Janet") // overwrite keeps original position

	assert.Equal(t, []string{"firstname", "lastname"}, e.AttributeNames())
	v, ok := e.Get("firstname")
	require.True(t, ok)
	assert.Equal(t, "Janet", v)
	assert.Equal(t, 2, e.Len())
}

func TestEntityTypedGetters(t *testing.T) {
	e, err := entity.New("account")
	require.NoError(t, err)

	ref := entity.EntityReference{LogicalName: "contact", ID: uuid.New()}
	e.Set("primarycontactid", ref)
	e.Set("statecode", entity.NewOptionSet(0, "Active"))
	e.Set("name", "Contoso")

	got, ok := e.GetReference("primarycontactid")
	require.True(t, ok)
	assert.Equal(t, ref, got)

	_, ok = e.GetReference("name")
	assert.False(t, ok)

	os, ok := e.GetOptionSet("statecode")
	require.True(t, ok)
	assert.Equal(t, "Active", os.Label)
}

func TestEntityRequiresLogicalName(t *testing.T) {
	_, err := entity.New("")
	assert.ErrorIs(t, err, dverrors.ErrEmptyValue)
}

func TestParseEntityReference(t *testing.T) {
	id := uuid.New()
	ref, err := entity.ParseEntityReference("contact", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, ref.ID)
	assert.Equal(t, "contact", ref.LogicalName)
}

func TestParseEntityReferenceMalformed(t *testing.T) {
	_, err := entity.ParseEntityReference("contact", "not-a-uuid")
	assert.ErrorIs(t, err, dverrors.ErrMalformedID)

	_, err = entity.ParseEntityReference("", uuid.NewString())
	assert.ErrorIs(t, err, dverrors.ErrEmptyValue)
}

func TestReferenceCollectionHomogeneous(t *testing.T) {
	a := entity.EntityReference{LogicalName: "contact", ID: uuid.New()}
	b := entity.EntityReference{LogicalName: "contact", ID: uuid.New()}

	col, err := entity.NewEntityReferenceCollection(a, b)
	require.NoError(t, err)
	assert.Equal(t, "contact", col.LogicalName())
	assert.Equal(t, 2, col.Len())
}

func TestReferenceCollectionRejectsMixed(t *testing.T) {
	a := entity.EntityReference{LogicalName: "contact", ID: uuid.New()}
	b := entity.EntityReference{LogicalName: "account", ID: uuid.New()}

	_, err := entity.NewEntityReferenceCollection(a, b)
	assert.ErrorIs(t, err, dverrors.ErrMixedReferences)

	_, err = entity.NewEntityReferenceCollection()
	assert.ErrorIs(t, err, dverrors.ErrEmptyValue)
}
