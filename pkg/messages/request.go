// Package messages builds Web API requests and parses their responses. The
// builders are pure: they produce prepared *http.Request values and never
// perform I/O themselves.
package messages

import (
	"net/http"

	"github.com/google/uuid"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/metadata"
)

// APIPath is the Web API route prefix all endpoints share.
const APIPath = "/api/data/v9.2/"

// Options carry the per-request server behavior switches.
type Options struct {
	// Tag is an optional shared-variable tag forwarded to plugins.
	Tag string

	SuppressDuplicateDetection              bool
	BypassCustomPluginExecution             bool
	SuppressCallbackRegistrationExpanderJob bool
}

// DataverseRequest is the prepared addressing and header state shared by the
// operation builders: the record's collection endpoint and the OData headers.
type DataverseRequest struct {
	BaseURL  string
	Endpoint string
	Headers  http.Header
}

// NewDataverseRequest prepares the endpoint and headers for one record. The
// endpoint is "<base>/api/data/v9.2/<collection>", with "(<id>)" appended
// when the record has an identifier and "?tag=" when a tag is set.
func NewDataverseRequest(baseURL string, org *metadata.OrgMetadata, logicalName string, id uuid.UUID, opts Options) (*DataverseRequest, error) {
	if baseURL == "" {
		return nil, dverrors.NewError("request", logicalName, dverrors.ErrEmptyValue)
	}
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}

	collection, err := org.CollectionName(logicalName)
	if err != nil {
		return nil, err
	}

	endpoint := baseURL + APIPath + collection
	if id != uuid.Nil {
		endpoint += "(" + id.String() + ")"
	}
	if opts.Tag != "" {
		endpoint += "?tag=" + opts.Tag
	}

	return &DataverseRequest{
		BaseURL:  baseURL,
		Endpoint: endpoint,
		Headers:  buildHeaders(opts),
	}, nil
}

func buildHeaders(opts Options) http.Header {
	h := http.Header{}
	h.Set("OData-MaxVersion", "4.0")
	h.Set("OData-Version", "4.0")
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Prefer", "odata.include-annotations=*")

	if opts.SuppressDuplicateDetection {
		h.Set("MSCRM.SuppressDuplicateDetection", "true")
	}
	if opts.BypassCustomPluginExecution {
		h.Set("MSCRM.BypassCustomPluginExecution", "true")
	}
	if opts.SuppressCallbackRegistrationExpanderJob {
		h.Set("MSCRM.SuppressCallBackRegistrationExpanderJob", "true")
	}
	return h
}
