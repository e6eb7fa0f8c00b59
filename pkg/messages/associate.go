package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
	"github.com/crmkit/dataverse/pkg/relationship"
)

// NewAssociateRequests prepares one POST per related record, each linking it
// to the primary record through the resolved relationship's $ref endpoint.
func NewAssociateRequests(ctx context.Context, dr *DataverseRequest, rel relationship.Relationship,
	related *entity.EntityReferenceCollection, org *metadata.OrgMetadata) ([]*http.Request, error) {

	if rel.SchemaName == "" {
		return nil, dverrors.NewError("associate", "", dverrors.ErrEmptyValue)
	}
	collection, err := org.CollectionName(related.LogicalName())
	if err != nil {
		return nil, err
	}

	endpoint := strings.SplitN(dr.Endpoint, "?", 2)[0] + "/" + rel.SchemaName + "/$ref"

	requests := make([]*http.Request, 0, related.Len())
	for _, ref := range related.References() {
		body := map[string]string{
			"@odata.id": dr.BaseURL + APIPath + collection + "(" + ref.ID.String() + ")",
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, dverrors.NewError("associate", related.LogicalName(), err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, dverrors.NewError("associate", related.LogicalName(), err)
		}
		req.Header = dr.Headers.Clone()
		requests = append(requests, req)
	}
	return requests, nil
}

// NewDisassociateRequests prepares one DELETE per related record against the
// relationship's $ref endpoint.
func NewDisassociateRequests(ctx context.Context, dr *DataverseRequest, rel relationship.Relationship,
	related *entity.EntityReferenceCollection) ([]*http.Request, error) {

	if rel.SchemaName == "" {
		return nil, dverrors.NewError("disassociate", "", dverrors.ErrEmptyValue)
	}

	base := strings.SplitN(dr.Endpoint, "?", 2)[0]
	requests := make([]*http.Request, 0, related.Len())
	for _, ref := range related.References() {
		endpoint := base + "/" + rel.SchemaName + "(" + ref.ID.String() + ")/$ref"
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
		if err != nil {
			return nil, dverrors.NewError("disassociate", related.LogicalName(), err)
		}
		req.Header = dr.Headers.Clone()
		requests = append(requests, req)
	}
	return requests, nil
}
