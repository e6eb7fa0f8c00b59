package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/crmkit/dataverse/pkg/codec"
	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

// NewCreateRequest prepares a POST creating the entity. The body comes from
// the encode side of the codec; an entity with no attributes is an error
// here because a create without a body is meaningless.
func NewCreateRequest(ctx context.Context, dr *DataverseRequest, e *entity.Entity, org *metadata.OrgMetadata) (*http.Request, error) {
	body, err := codec.Encode(e, org)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, dverrors.NewError("create", e.LogicalName, dverrors.ErrNothingToSend)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, dverrors.NewError("create", e.LogicalName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dr.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, dverrors.NewError("create", e.LogicalName, err)
	}
	req.Header = dr.Headers.Clone()
	return req, nil
}

// ParseCreateResponse extracts the created record's identifier from the
// OData-EntityId response header, e.g.
// "https://org.crm.dynamics.com/api/data/v9.2/contacts(<guid>)".
func ParseCreateResponse(resp *http.Response) (uuid.UUID, error) {
	entityID := resp.Header.Get("OData-EntityId")
	if entityID == "" {
		return uuid.Nil, dverrors.NewError("create", "",
			fmt.Errorf("response has no OData-EntityId header"))
	}
	open := strings.LastIndex(entityID, "(")
	close_ := strings.LastIndex(entityID, ")")
	if open < 0 || close_ < open {
		return uuid.Nil, dverrors.NewError("create", "",
			fmt.Errorf("%w: %q", dverrors.ErrMalformedID, entityID))
	}
	id, err := uuid.Parse(entityID[open+1 : close_])
	if err != nil {
		return uuid.Nil, dverrors.NewError("create", "",
			fmt.Errorf("%w: %q", dverrors.ErrMalformedID, entityID))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return id, nil
}
