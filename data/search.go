package data

import (
	"errors"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
)

// SearchParams is an alias for the meilisearch search request type
type SearchParams = meilisearch.SearchRequest

// SearchClient wraps the Meilisearch client exposed to modules
type SearchClient struct {
	client meilisearch.ServiceManager
}

// NewSearchClient creates a search client. An empty host yields a client
// whose operations fail with an explicit error instead of panicking.
func NewSearchClient(host, apiKey string) *SearchClient {
	if host == "" {
		return &SearchClient{}
	}
	return &SearchClient{client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey))}
}

// Search runs a query against an index
func (c *SearchClient) Search(index, query string, params *SearchParams) (*meilisearch.SearchResponse, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("search client is not configured")
	}
	resp, err := c.client.Index(index).Search(query, params)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	return resp, nil
}

// IndexDocuments adds documents to an index
func (c *SearchClient) IndexDocuments(index string, documents any, primaryKey ...string) error {
	if c == nil || c.client == nil {
		return errors.New("search client is not configured")
	}
	if _, err := c.client.Index(index).AddDocuments(documents, primaryKey...); err != nil {
		return fmt.Errorf("index documents error: %w", err)
	}
	return nil
}

// DeleteDocument removes a document from an index
func (c *SearchClient) DeleteDocument(index, documentID string) error {
	if c == nil || c.client == nil {
		return errors.New("search client is not configured")
	}
	if _, err := c.client.Index(index).DeleteDocument(documentID); err != nil {
		return fmt.Errorf("delete document error: %w", err)
	}
	return nil
}
