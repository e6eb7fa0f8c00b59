package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/crmkit/dataverse/pkg/codec"
	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
	"github.com/crmkit/dataverse/pkg/query"
)

// NewRetrieveRequest prepares a GET for a single record. The column set is
// transformed through metadata into a $select clause; an all-columns set
// omits $select entirely.
func NewRetrieveRequest(ctx context.Context, dr *DataverseRequest, em *metadata.EntityMetadata, columns query.ColumnSet) (*http.Request, error) {
	selected, err := codec.TransformColumnSet(em, columns)
	if err != nil {
		return nil, err
	}

	endpoint := dr.Endpoint
	if len(selected) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "$select=" + strings.Join(selected, ",")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dverrors.NewError("retrieve", em.LogicalName, err)
	}
	req.Header = dr.Headers.Clone()
	return req, nil
}

// ParseRetrieveResponse decodes a single-record response body.
func ParseRetrieveResponse(resp *http.Response, logicalName string) (*entity.Entity, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dverrors.NewError("retrieve", logicalName, err)
	}
	return codec.Decode(logicalName, body)
}

// NewRetrieveMultipleRequest prepares a GET executing the query's FetchXML
// against the entity's collection endpoint.
func NewRetrieveMultipleRequest(ctx context.Context, dr *DataverseRequest, q *query.QueryExpression) (*http.Request, error) {
	if q == nil {
		return nil, dverrors.NewError("retrieve-multiple", "", dverrors.ErrEmptyValue)
	}

	endpoint := dr.Endpoint
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	endpoint += sep + "fetchXml=" + url.QueryEscape(q.FetchXML())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dverrors.NewError("retrieve-multiple", q.EntityName(), err)
	}
	req.Header = dr.Headers.Clone()
	return req, nil
}

// ParseRetrieveMultipleResponse decodes a multi-record response body into an
// entity collection, preserving record order.
func ParseRetrieveMultipleResponse(resp *http.Response, logicalName string) (*entity.EntityCollection, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dverrors.NewError("retrieve-multiple", logicalName, err)
	}

	var envelope struct {
		Value []json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, dverrors.NewError("retrieve-multiple", logicalName,
			fmt.Errorf("parse response: %w", err))
	}

	collection := &entity.EntityCollection{
		LogicalName: logicalName,
		Entities:    make([]*entity.Entity, 0, len(envelope.Value)),
	}
	for _, raw := range envelope.Value {
		e, err := codec.Decode(logicalName, raw)
		if err != nil {
			return nil, err
		}
		collection.Entities = append(collection.Entities, e)
	}
	return collection, nil
}
