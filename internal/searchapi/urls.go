package searchapi

import (
	"net/url"
	"strings"
)

// Resource collections exposed by the search service REST API.
const (
	CollectionIndexes     = "indexes"
	CollectionIndexers    = "indexers"
	CollectionDatasources = "datasources"
	CollectionSkillsets   = "skillsets"
	CollectionSynonymMaps = "synonymmaps"
)

// URLs builds versioned endpoint URLs for one search service.
type URLs struct {
	base       string
	apiVersion string
}

// NewURLs returns a builder rooted at the service URL, e.g. https://<name>.search.windows.net.
func NewURLs(serviceURL, apiVersion string) URLs {
	return URLs{base: strings.TrimRight(serviceURL, "/"), apiVersion: apiVersion}
}

func (u URLs) build(segments ...string) string {
	var b strings.Builder
	b.WriteString(u.base)
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	b.WriteString("?api-version=")
	b.WriteString(url.QueryEscape(u.apiVersion))
	return b.String()
}

// Collection is the URL of a resource collection, used to list and create.
func (u URLs) Collection(collection string) string {
	return u.build(collection)
}

// Resource is the URL of a named resource, used to get, update, and delete.
func (u URLs) Resource(collection, name string) string {
	return u.build(collection, name)
}

// IndexerStatus is the URL of an indexer's execution status.
func (u URLs) IndexerStatus(name string) string {
	return u.build(CollectionIndexers, name, "status")
}

// ResetIndexer is the URL that clears an indexer's change tracking state.
func (u URLs) ResetIndexer(name string) string {
	return u.build(CollectionIndexers, name, "reset")
}

// RunIndexer is the URL that starts an indexer on demand.
func (u URLs) RunIndexer(name string) string {
	return u.build(CollectionIndexers, name, "run")
}

// SearchDocs is the URL of the POST search endpoint of an index.
func (u URLs) SearchDocs(index string) string {
	return u.build(CollectionIndexes, index, "docs", "search")
}

// LookupDoc is the URL of a single document by key.
func (u URLs) LookupDoc(index, key string) string {
	return u.build(CollectionIndexes, index, "docs", key)
}
