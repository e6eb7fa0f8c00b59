package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/crmkit/dataverse/pkg/codec"
	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

// NewUpdateRequest prepares a PATCH updating the record's populated
// attributes. An entity with nothing to send yields a nil request and no
// error; the caller treats it as a no-op.
func NewUpdateRequest(ctx context.Context, dr *DataverseRequest, e *entity.Entity, org *metadata.OrgMetadata) (*http.Request, error) {
	body, err := codec.Encode(e, org)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, dverrors.NewError("update", e.LogicalName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, dr.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, dverrors.NewError("update", e.LogicalName, err)
	}
	req.Header = dr.Headers.Clone()
	// Update only; never upsert a record that has been deleted meanwhile.
	req.Header.Set("If-Match", "*")
	return req, nil
}

// NewDeleteRequest prepares a DELETE for the record the request addresses.
func NewDeleteRequest(ctx context.Context, dr *DataverseRequest, logicalName string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, dr.Endpoint, nil)
	if err != nil {
		return nil, dverrors.NewError("delete", logicalName, err)
	}
	req.Header = dr.Headers.Clone()
	return req, nil
}
