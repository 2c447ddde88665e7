package schema

const (
	typeString   = "Edm.String"
	typeDouble   = "Edm.Double"
	typeGeoPoint = "Edm.GeographyPoint"
	typeStrings  = "Collection(Edm.String)"
)

type fieldOpts struct {
	key, searchable, filterable, sortable, facetable bool
}

func field(name, typ string, o fieldOpts) map[string]any {
	return map[string]any{
		"name":        name,
		"type":        typ,
		"key":         o.key,
		"searchable":  o.searchable,
		"filterable":  o.filterable,
		"sortable":    o.sortable,
		"facetable":   o.facetable,
		"retrievable": true,
	}
}

// SampleIndex returns a blob-document index whose top_words field receives the top-words skill output.
func SampleIndex(name string) map[string]any {
	return map[string]any{
		"name": name,
		"fields": []any{
			field("id", typeString, fieldOpts{key: true, filterable: true, sortable: true}),
			field("metadata_storage_name", typeString, fieldOpts{searchable: true, filterable: true, sortable: true}),
			field("metadata_storage_path", typeString, fieldOpts{}),
			field("content", typeString, fieldOpts{searchable: true}),
			field("top_words", typeStrings, fieldOpts{searchable: true, filterable: true, facetable: true}),
		},
		"suggesters":      []any{},
		"scoringProfiles": []any{},
	}
}

// SampleBlobIndexer returns an indexer that runs the skillset over a blob datasource.
func SampleBlobIndexer(name, indexName, datasourceName, skillsetName string) map[string]any {
	return map[string]any{
		"name":            name,
		"dataSourceName":  datasourceName,
		"targetIndexName": indexName,
		"skillsetName":    skillsetName,
		"schedule":        map[string]any{"interval": "PT2H"},
		"parameters": map[string]any{
			"configuration": map[string]any{
				"dataToExtract": "contentAndMetadata",
				"parsingMode":   "default",
			},
		},
		"fieldMappings": []any{
			map[string]any{
				"sourceFieldName": "metadata_storage_path",
				"targetFieldName": "id",
				"mappingFunction": map[string]any{"name": "base64Encode"},
			},
		},
		"outputFieldMappings": []any{
			map[string]any{
				"sourceFieldName": "/document/top_words",
				"targetFieldName": "top_words",
			},
		},
	}
}

// SampleSkillset wires the top-words web API skill into a skillset.
func SampleSkillset(name, skillURI string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": "Extracts the most frequent words of each document",
		"skills": []any{
			map[string]any{
				"@odata.type": "#Microsoft.Skills.Custom.WebApiSkill",
				"name":        "topwords",
				"uri":         skillURI,
				"httpMethod":  "POST",
				"timeout":     "PT30S",
				"batchSize":   1,
				"context":     "/document",
				"inputs": []any{
					map[string]any{"name": "text", "source": "/document/content"},
				},
				"outputs": []any{
					map[string]any{"name": "text", "targetName": "top_words"},
				},
			},
		},
		"cognitiveServices": map[string]any{
			"@odata.type": "#Microsoft.Azure.Search.CognitiveServicesByKey",
			"description": "all-in-one cognitive services key",
			"key":         "",
		},
	}
}

// AirportsIndex returns the index schema for the airports Cosmos DB container.
func AirportsIndex(name string) map[string]any {
	return map[string]any{
		"name": name,
		"fields": []any{
			field("id", typeString, fieldOpts{key: true, filterable: true}),
			field("pk", typeString, fieldOpts{filterable: true, sortable: true}),
			field("iata_code", typeString, fieldOpts{searchable: true, filterable: true, sortable: true}),
			field("name", typeString, fieldOpts{searchable: true, sortable: true}),
			field("city", typeString, fieldOpts{searchable: true, filterable: true, sortable: true, facetable: true}),
			field("country", typeString, fieldOpts{searchable: true, filterable: true, sortable: true, facetable: true}),
			field("timezone_code", typeString, fieldOpts{filterable: true, facetable: true}),
			field("latitude", typeDouble, fieldOpts{filterable: true, sortable: true}),
			field("longitude", typeDouble, fieldOpts{filterable: true, sortable: true}),
			field("location", typeGeoPoint, fieldOpts{filterable: true, sortable: true}),
		},
		"suggesters":      []any{},
		"scoringProfiles": []any{},
	}
}

// CosmosIndexer returns an indexer pulling from a Cosmos DB datasource.
func CosmosIndexer(name, indexName, datasourceName string) map[string]any {
	return map[string]any{
		"name":            name,
		"dataSourceName":  datasourceName,
		"targetIndexName": indexName,
		"schedule":        map[string]any{"interval": "PT2H"},
		"parameters": map[string]any{
			"batchSize":              nil,
			"maxFailedItems":         0,
			"maxFailedItemsPerBatch": 0,
		},
		"fieldMappings": []any{},
	}
}

// BlobDatasource returns the POST body for an Azure Blob Storage datasource.
func BlobDatasource(name, connectionString, container string) map[string]any {
	return map[string]any{
		"name":        name,
		"type":        "azureblob",
		"credentials": map[string]any{"connectionString": connectionString},
		"container":   map[string]any{"name": container},
	}
}

// CosmosDatasource returns the POST body for a Cosmos DB SQL API datasource.
func CosmosDatasource(name, connectionString, container string) map[string]any {
	return map[string]any{
		"name":        name,
		"type":        "cosmosdb",
		"credentials": map[string]any{"connectionString": connectionString},
		"container":   map[string]any{"name": container, "query": nil},
		"dataChangeDetectionPolicy": map[string]any{
			"@odata.type":             "#Microsoft.Azure.Search.HighWaterMarkChangeDetectionPolicy",
			"highWaterMarkColumnName": "_ts",
		},
	}
}
