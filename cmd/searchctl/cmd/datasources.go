package cmd

import (
	"github.com/spf13/cobra"

	"searchkit/internal/searchapi"
)

func newDatasourceCmds(a *app) []*cobra.Command {
	blob := &cobra.Command{
		Use:   "create-blob-datasource <container>",
		Short: "Register a blob storage container as a datasource",
		Long: `Register a blob storage container as a datasource named azureblob-<container>.

Requires datasources.storage_connection_string (AZURE_STORAGE_CONNECTION_STRING).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.CreateBlobDatasource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cosmos := &cobra.Command{
		Use:   "create-cosmos-datasource <db> <container>",
		Short: "Register a Cosmos DB container as a datasource",
		Long: `Register a Cosmos DB container as a datasource named cosmosdb-<db>-<container>.

Requires datasources.cosmos_connection_string (AZURE_COSMOSDB_CONNECTION_STRING).`,
		Example: `  searchctl create-cosmos-datasource dev airports`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.CreateCosmosDatasource(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	del := newDeleteCmd(a, searchapi.KindDatasource)

	return []*cobra.Command{blob, cosmos, del}
}
