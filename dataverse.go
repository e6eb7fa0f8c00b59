// Package dataverse is a metadata-driven client for Dataverse-style record
// stores. The core of the module is pure: a query expression model compiled
// to FetchXML, a bidirectional attribute codec keyed on organization
// metadata, and a relationship resolver. This package ties them to three
// narrow collaborator interfaces: a token source, a metadata provider and an
// HTTP dispatcher.
package dataverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
	"github.com/crmkit/dataverse/pkg/log"
	"github.com/crmkit/dataverse/pkg/messages"
	"github.com/crmkit/dataverse/pkg/metadata"
	"github.com/crmkit/dataverse/pkg/query"
	"github.com/crmkit/dataverse/pkg/relationship"
	"github.com/crmkit/dataverse/pkg/session"
)

// Doer dispatches a prepared request. Retry and backoff policy belong to the
// implementation, not to this client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MetadataProvider supplies the organization metadata snapshot.
type MetadataProvider interface {
	OrgMetadata(ctx context.Context, withRelationships bool) (*metadata.OrgMetadata, error)
}

// Client orchestrates Web API calls over the collaborator interfaces. The
// metadata snapshot is copy-on-refresh: RefreshMetadata swaps in a new
// snapshot and never mutates the old one, so concurrent calls holding the
// previous snapshot stay valid.
type Client struct {
	cfg      *session.Config
	tokens   session.TokenSource
	doer     Doer
	provider MetadataProvider
	logger   log.Logger

	mu  sync.RWMutex
	org *metadata.OrgMetadata
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetadataProvider replaces the default Web API metadata fetch.
func WithMetadataProvider(p MetadataProvider) Option {
	return func(c *Client) { c.provider = p }
}

// NewClient creates a client. If the config names a metadata snapshot file
// that exists, it is loaded instead of fetching; otherwise metadata is
// fetched lazily on first use.
func NewClient(cfg *session.Config, tokens session.TokenSource, doer Doer, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = session.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("dataverse: token source is required")
	}
	if doer == nil {
		return nil, fmt.Errorf("dataverse: http doer is required")
	}

	c := &Client{
		cfg:    cfg,
		tokens: tokens,
		doer:   doer,
		logger: log.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		c.provider = &webMetadataProvider{client: c}
	}

	if cfg.MetadataSnapshotPath != "" {
		if org, err := metadata.LoadSnapshotFile(cfg.MetadataSnapshotPath); err == nil {
			c.org = org
			c.logger.Debug("loaded metadata snapshot",
				"path", cfg.MetadataSnapshotPath, "entities", len(org.Entities))
		} else if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("metadata snapshot unreadable, will fetch",
				"path", cfg.MetadataSnapshotPath, "error", err)
		}
	}
	return c, nil
}

// Metadata returns the current snapshot, fetching it on first use.
func (c *Client) Metadata(ctx context.Context) (*metadata.OrgMetadata, error) {
	c.mu.RLock()
	org := c.org
	c.mu.RUnlock()
	if org != nil {
		return org, nil
	}
	return c.refresh(ctx, c.cfg.FetchRelationships)
}

// RefreshMetadata fetches a new snapshot and swaps it in.
func (c *Client) RefreshMetadata(ctx context.Context, withRelationships bool) error {
	_, err := c.refresh(ctx, withRelationships)
	return err
}

func (c *Client) refresh(ctx context.Context, withRelationships bool) (*metadata.OrgMetadata, error) {
	org, err := c.provider.OrgMetadata(ctx, withRelationships)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.org = org
	c.mu.Unlock()
	c.logger.Debug("metadata refreshed",
		"entities", len(org.Entities), "relationships", org.ContainsRelationships)

	if c.cfg.MetadataSnapshotPath != "" {
		if err := org.SaveSnapshotFile(c.cfg.MetadataSnapshotPath); err != nil {
			c.logger.Warn("failed to persist metadata snapshot",
				"path", c.cfg.MetadataSnapshotPath, "error", err)
		}
	}
	return org, nil
}

// relationshipMetadata returns a snapshot that includes relationships,
// refetching if the current one was taken without them.
func (c *Client) relationshipMetadata(ctx context.Context) (*metadata.OrgMetadata, error) {
	org, err := c.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	if !org.ContainsRelationships {
		return c.refresh(ctx, true)
	}
	return org, nil
}

// Create inserts the entity and returns the server-assigned identifier.
func (c *Client) Create(ctx context.Context, e *entity.Entity) (uuid.UUID, error) {
	org, err := c.Metadata(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, e.LogicalName, uuid.Nil, messages.Options{})
	if err != nil {
		return uuid.Nil, err
	}
	req, err := messages.NewCreateRequest(ctx, dr, e, org)
	if err != nil {
		return uuid.Nil, err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()
	id, err := messages.ParseCreateResponse(resp)
	if err != nil {
		return uuid.Nil, err
	}
	e.ID = id
	c.logger.Info("created record", "entity", e.LogicalName, "id", id)
	return id, nil
}

// Retrieve fetches a single record by identifier.
func (c *Client) Retrieve(ctx context.Context, logicalName string, id uuid.UUID, columns query.ColumnSet) (*entity.Entity, error) {
	org, err := c.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	em, err := org.Entity(logicalName)
	if err != nil {
		return nil, err
	}
	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, logicalName, id, messages.Options{})
	if err != nil {
		return nil, err
	}
	req, err := messages.NewRetrieveRequest(ctx, dr, em, columns)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return messages.ParseRetrieveResponse(resp, logicalName)
}

// RetrieveMultiple executes a query expression and decodes every record.
func (c *Client) RetrieveMultiple(ctx context.Context, q *query.QueryExpression) (*entity.EntityCollection, error) {
	org, err := c.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, q.EntityName(), uuid.Nil, messages.Options{})
	if err != nil {
		return nil, err
	}
	req, err := messages.NewRetrieveMultipleRequest(ctx, dr, q)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return messages.ParseRetrieveMultipleResponse(resp, q.EntityName())
}

// Update patches the record's populated attributes. An entity with no
// attributes is a no-op, not an error.
func (c *Client) Update(ctx context.Context, e *entity.Entity) error {
	if e.ID == uuid.Nil {
		return dverrors.NewError("update", e.LogicalName, dverrors.ErrMalformedID)
	}
	org, err := c.Metadata(ctx)
	if err != nil {
		return err
	}
	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, e.LogicalName, e.ID, messages.Options{})
	if err != nil {
		return err
	}
	req, err := messages.NewUpdateRequest(ctx, dr, e, org)
	if err != nil {
		return err
	}
	if req == nil {
		c.logger.Debug("nothing to update", "entity", e.LogicalName, "id", e.ID)
		return nil
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Delete removes a record by identifier.
func (c *Client) Delete(ctx context.Context, logicalName string, id uuid.UUID) error {
	if id == uuid.Nil {
		return dverrors.NewError("delete", logicalName, dverrors.ErrMalformedID)
	}
	org, err := c.Metadata(ctx)
	if err != nil {
		return err
	}
	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, logicalName, id, messages.Options{})
	if err != nil {
		return err
	}
	req, err := messages.NewDeleteRequest(ctx, dr, logicalName)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Associate links the related records to the primary record. When
// relationshipName is empty the relationship is inferred, and only if it is
// structurally unambiguous.
func (c *Client) Associate(ctx context.Context, primary entity.EntityReference,
	related *entity.EntityReferenceCollection, relationshipName string) error {
	return c.relate(ctx, primary, related, relationshipName, false)
}

// Disassociate unlinks the related records from the primary record.
func (c *Client) Disassociate(ctx context.Context, primary entity.EntityReference,
	related *entity.EntityReferenceCollection, relationshipName string) error {
	return c.relate(ctx, primary, related, relationshipName, true)
}

func (c *Client) relate(ctx context.Context, primary entity.EntityReference,
	related *entity.EntityReferenceCollection, relationshipName string, remove bool) error {

	org, err := c.relationshipMetadata(ctx)
	if err != nil {
		return err
	}
	rel, err := relationship.Resolve(primary.LogicalName, related.LogicalName(), org, relationshipName)
	if err != nil {
		return err
	}

	dr, err := messages.NewDataverseRequest(c.cfg.ResourceURL, org, primary.LogicalName, primary.ID, messages.Options{})
	if err != nil {
		return err
	}

	var requests []*http.Request
	if remove {
		requests, err = messages.NewDisassociateRequests(ctx, dr, rel, related)
	} else {
		requests, err = messages.NewAssociateRequests(ctx, dr, rel, related, org)
	}
	if err != nil {
		return err
	}

	for _, req := range requests {
		resp, err := c.send(ctx, req)
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	c.logger.Info("relationship updated",
		"relationship", rel.SchemaName, "primary", primary.LogicalName,
		"related", related.LogicalName(), "count", related.Len(), "removed", remove)
	return nil
}

// send authorizes and dispatches a prepared request, rejecting non-2xx
// responses.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataverse: acquire token: %w", err)
	}
	if session.TokenExpired(token, 30*time.Second) {
		c.logger.Warn("bearer token at or past expiry", "url", req.URL.Path)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataverse: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("dataverse: %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, body)
	}
	return resp, nil
}

// webMetadataProvider fetches EntityDefinitions through the client's own
// doer and token source.
type webMetadataProvider struct {
	client *Client
}

func (p *webMetadataProvider) OrgMetadata(ctx context.Context, withRelationships bool) (*metadata.OrgMetadata, error) {
	endpoint := strings.TrimRight(p.client.cfg.ResourceURL, "/") + messages.APIPath +
		"EntityDefinitions?$expand=Attributes($select=LogicalName,AttributeType,SchemaName)"
	if withRelationships {
		endpoint += ",OneToManyRelationships,ManyToOneRelationships,ManyToManyRelationships"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dataverse: metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dataverse: read metadata response: %w", err)
	}
	return metadata.ParseOrg(body, withRelationships)
}
