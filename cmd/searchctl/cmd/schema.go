package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"searchkit/internal/schema"
	"searchkit/internal/searchapi"
	"searchkit/internal/store"
)

func newSchemaDiffCmds(a *app) []*cobra.Command {
	index := &cobra.Command{
		Use:     "index-schema-diff <a> <b>",
		Short:   "Compare the fields of two index schema files",
		Example: `  searchctl index-schema-diff schemas/documents_index_v1.json schemas/documents_index_v2.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, after, err := a.readPair(args[0], args[1])
			if err != nil {
				return err
			}
			diff, err := schema.DiffIndex(before, after)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), diff)
		},
	}

	indexer := &cobra.Command{
		Use:   "indexer-schema-diff <a> <b>",
		Short: "Compare the top-level keys of two indexer schema files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, after, err := a.readPair(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), schema.DiffIndexer(before, after))
		},
	}

	return []*cobra.Command{index, indexer}
}

func (a *app) readPair(first, second string) (map[string]any, map[string]any, error) {
	reader := store.NewSchemaReader(a.cfg.Paths.SchemaDir)
	before, err := reader.Read(first, nil)
	if err != nil {
		return nil, nil, err
	}
	after, err := reader.Read(second, nil)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func newGenerateCmds(a *app) []*cobra.Command {
	sampleIndex := &cobra.Command{
		Use:   "generate-sample-index-schema",
		Short: "Write a sample blob document index schema to the schema directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeSchemas(cmd, map[string]any{
				"sample_index": schema.SampleIndex("sample"),
			})
		},
	}

	var container string
	blobIndexer := &cobra.Command{
		Use:   "generate-sample-blob-indexer",
		Short: "Write a sample blob indexer and its top-words skillset to the schema directory",
		Long: `Write a sample blob indexer and its top-words skillset to the schema directory.

The skillset calls skill.remote_url, or skill.local_url when no remote URL is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			skillURL := a.cfg.Skill.RemoteURL
			if skillURL == "" {
				skillURL = a.cfg.Skill.LocalURL
			}
			datasource := searchapi.BlobDatasourceName(container)
			return a.writeSchemas(cmd, map[string]any{
				"sample_blob_indexer": schema.SampleBlobIndexer("sample", "sample", datasource, "topwords"),
				"sample_skillset":     schema.SampleSkillset("topwords", skillURL),
			})
		},
	}
	blobIndexer.Flags().StringVar(&container, "container", "documents", "Blob container the indexer reads")

	airports := &cobra.Command{
		Use:   "generate-airport-schema-files",
		Short: "Write the airports index and Cosmos DB indexer schemas to the schema directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasource := searchapi.CosmosDatasourceName("dev", "airports")
			return a.writeSchemas(cmd, map[string]any{
				"airports_index":   schema.AirportsIndex("airports"),
				"airports_indexer": schema.CosmosIndexer("airports", "airports", datasource),
			})
		},
	}

	return []*cobra.Command{sampleIndex, blobIndexer, airports}
}

// writeSchemas saves each document as <schema_dir>/<stem>.json in stem order.
func (a *app) writeSchemas(cmd *cobra.Command, docs map[string]any) error {
	files := store.NewResponseStore(a.cfg.Paths.SchemaDir)
	stems := make([]string, 0, len(docs))
	for stem := range docs {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	for _, stem := range stems {
		saved, err := files.SaveValue(stem, docs[stem])
		if err != nil {
			return err
		}
		a.logger.Debug("file written", "path", saved)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "file written: %s\n", saved); err != nil {
			return err
		}
	}
	return nil
}
