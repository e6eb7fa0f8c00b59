// Package mocks provides testify mocks for the client's collaborator
// interfaces, so callers can unit test orchestration without a live
// organization.
package mocks

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/crmkit/dataverse/pkg/metadata"
)

// Doer is a mock implementation of the HTTP dispatch collaborator.
type Doer struct {
	mock.Mock
}

func (m *Doer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if resp := args.Get(0); resp != nil {
		return resp.(*http.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

// TokenSource is a mock implementation of the bearer-token collaborator.
type TokenSource struct {
	mock.Mock
}

func (m *TokenSource) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MetadataProvider is a mock implementation of the metadata-fetch
// collaborator.
type MetadataProvider struct {
	mock.Mock
}

func (m *MetadataProvider) OrgMetadata(ctx context.Context, withRelationships bool) (*metadata.OrgMetadata, error) {
	args := m.Called(ctx, withRelationships)
	if org := args.Get(0); org != nil {
		return org.(*metadata.OrgMetadata), args.Error(1)
	}
	return nil, args.Error(1)
}
