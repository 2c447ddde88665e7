package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"searchkit/internal/schema"
)

// Kind identifies a manageable resource type.
type Kind struct {
	Collection string
	Label      string
	Plural     string
}

var (
	KindIndex      = Kind{Collection: CollectionIndexes, Label: "index", Plural: "indexes"}
	KindIndexer    = Kind{Collection: CollectionIndexers, Label: "indexer", Plural: "indexers"}
	KindDatasource = Kind{Collection: CollectionDatasources, Label: "datasource", Plural: "datasources"}
	KindSkillset   = Kind{Collection: CollectionSkillsets, Label: "skillset", Plural: "skillsets"}
	KindSynonymMap = Kind{Collection: CollectionSynonymMaps, Label: "synmap", Plural: "synmaps"}
)

// Kinds lists every resource type, keyed by both singular and plural label.
var Kinds = map[string]Kind{
	"index": KindIndex, "indexes": KindIndex,
	"indexer": KindIndexer, "indexers": KindIndexer,
	"datasource": KindDatasource, "datasources": KindDatasource,
	"skillset": KindSkillset, "skillsets": KindSkillset,
	"synmap": KindSynonymMap, "synmaps": KindSynonymMap,
}

// Search modes accepted by SearchIndex.
const (
	SearchAll     = "all"
	SearchContent = "content"
)

// List fetches every resource of a kind.
func (c *Client) List(ctx context.Context, kind Kind) (*Result, error) {
	return c.Invoke(ctx, "list_"+kind.Plural, http.MethodGet, c.urls.Collection(kind.Collection), c.adminKey, nil)
}

// Get fetches one resource definition.
func (c *Client) Get(ctx context.Context, kind Kind, name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return c.Invoke(ctx, "get_"+kind.Label, http.MethodGet, c.urls.Resource(kind.Collection, name), c.adminKey, nil)
}

// Create posts the definition read from schemaRef, with its name replaced by name.
func (c *Client) Create(ctx context.Context, kind Kind, name, schemaRef string) (*Result, error) {
	body, err := c.definition(kind, name, schemaRef)
	if err != nil {
		return nil, err
	}
	function := fmt.Sprintf("create_%s_%s", kind.Label, name)
	return c.Invoke(ctx, function, http.MethodPost, c.urls.Collection(kind.Collection), c.adminKey, body)
}

// Update puts the definition read from schemaRef onto the named resource.
func (c *Client) Update(ctx context.Context, kind Kind, name, schemaRef string) (*Result, error) {
	body, err := c.definition(kind, name, schemaRef)
	if err != nil {
		return nil, err
	}
	function := fmt.Sprintf("update_%s_%s", kind.Label, name)
	return c.Invoke(ctx, function, http.MethodPut, c.urls.Resource(kind.Collection, name), c.adminKey, body)
}

// Delete removes the named resource.
func (c *Client) Delete(ctx context.Context, kind Kind, name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	function := fmt.Sprintf("delete_%s_%s", kind.Label, name)
	return c.Invoke(ctx, function, http.MethodDelete, c.urls.Resource(kind.Collection, name), c.adminKey, nil)
}

// GetIndexerStatus fetches the execution history of an indexer.
func (c *Client) GetIndexerStatus(ctx context.Context, name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return c.Invoke(ctx, "get_indexer_status", http.MethodGet, c.urls.IndexerStatus(name), c.adminKey, nil)
}

// ResetIndexer clears change tracking so the next run reprocesses every document.
func (c *Client) ResetIndexer(ctx context.Context, name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return c.Invoke(ctx, "reset_indexer", http.MethodPost, c.urls.ResetIndexer(name), c.adminKey, nil)
}

// RunIndexer starts an indexer immediately.
func (c *Client) RunIndexer(ctx context.Context, name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return c.Invoke(ctx, "run_indexer", http.MethodPost, c.urls.RunIndexer(name), c.adminKey, nil)
}

// BlobDatasourceName is the datasource name used for a blob container.
func BlobDatasourceName(container string) string {
	return "azureblob-" + container
}

// CosmosDatasourceName is the datasource name used for a Cosmos DB container.
func CosmosDatasourceName(database, container string) string {
	return fmt.Sprintf("cosmosdb-%s-%s", database, container)
}

// CreateBlobDatasource registers a blob storage container as a datasource.
func (c *Client) CreateBlobDatasource(ctx context.Context, container string) (*Result, error) {
	if c.datasources.StorageConnectionString == "" {
		return nil, errors.New("storage connection string is not configured (AZURE_STORAGE_CONNECTION_STRING)")
	}
	name := BlobDatasourceName(container)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	body := schema.BlobDatasource(name, c.datasources.StorageConnectionString, container)
	function := "create_blob_datasource_" + container
	return c.Invoke(ctx, function, http.MethodPost, c.urls.Collection(CollectionDatasources), c.adminKey, body)
}

// CreateCosmosDatasource registers a Cosmos DB container as a datasource.
func (c *Client) CreateCosmosDatasource(ctx context.Context, database, container string) (*Result, error) {
	if c.datasources.CosmosConnectionString == "" {
		return nil, errors.New("cosmos connection string is not configured (AZURE_COSMOSDB_CONNECTION_STRING)")
	}
	name := CosmosDatasourceName(database, container)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	connStr := fmt.Sprintf("%s;Database=%s", c.datasources.CosmosConnectionString, database)
	body := schema.CosmosDatasource(name, connStr, container)
	function := fmt.Sprintf("create_cosmos_datasource_%s_%s", database, container)
	return c.Invoke(ctx, function, http.MethodPost, c.urls.Collection(CollectionDatasources), c.adminKey, body)
}

// SearchResult is a search reply together with its reported document count.
type SearchResult struct {
	*Result
	Count *int64
}

// SearchIndex runs one of the canned searches against an index.
// SearchAll matches every document ordered by key; SearchContent runs a full-text query.
func (c *Client) SearchIndex(ctx context.Context, index, mode, text string) (*SearchResult, error) {
	if err := ValidateName(index); err != nil {
		return nil, err
	}

	params := map[string]any{"count": true}
	switch mode {
	case SearchAll:
		params["search"] = "*"
		if index == "airports" {
			params["orderby"] = "pk"
		} else {
			params["orderby"] = "id"
		}
	case SearchContent:
		params["search"] = text
	default:
		return nil, fmt.Errorf("unknown search mode %q (want %s or %s)", mode, SearchAll, SearchContent)
	}

	function := fmt.Sprintf("%s-search-%s", index, mode)
	res, err := c.Invoke(ctx, function, http.MethodPost, c.urls.SearchDocs(index), c.adminKey, params)
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Result: res}
	var reply struct {
		Count *int64 `json:"@odata.count"`
	}
	if err := json.Unmarshal(res.Body, &reply); err == nil {
		out.Count = reply.Count
	}
	return out, nil
}

// LookupDoc fetches a single document by key using the query key.
func (c *Client) LookupDoc(ctx context.Context, index, key string) (*Result, error) {
	if err := ValidateName(index); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("document key is required")
	}
	apiKey := c.queryKey
	if apiKey == "" {
		apiKey = c.adminKey
	}
	function := fmt.Sprintf("lookup_doc_%s_%s", index, key)
	return c.Invoke(ctx, function, http.MethodGet, c.urls.LookupDoc(index, key), apiKey, nil)
}

// InvokeSkill posts a single-record batch to a top-words skill endpoint.
func (c *Client) InvokeSkill(ctx context.Context, skillURL, function, text string) (*Result, error) {
	if skillURL == "" {
		return nil, errors.New("skill url is not configured")
	}
	body := map[string]any{
		"values": []any{
			map[string]any{"recordId": "1", "data": map[string]any{"text": text}},
		},
	}
	return c.Invoke(ctx, function, http.MethodPost, skillURL, "", body)
}

func (c *Client) definition(kind Kind, name, schemaRef string) (map[string]any, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if schemaRef == "" {
		return nil, errors.New("schema file is required")
	}

	doc, err := c.schemas.Read(schemaRef, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	if kind == KindSkillset && c.cogKey != "" {
		if cog, ok := doc["cognitiveServices"].(map[string]any); ok {
			cog["key"] = c.cogKey
		}
	}
	return doc, nil
}
