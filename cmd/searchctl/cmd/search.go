package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"searchkit/internal/searchapi"
)

func newSearchIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search-index <index> <all|content> [text...]",
		Short: "Run a canned search against an index",
		Long: `Run a canned search against an index.

  all      matches every document, ordered by key
  content  runs a full-text query with the remaining arguments

The reply is saved to <output_dir>/<index>-search-<mode>.json.`,
		Example: `  searchctl search-index airports all
  searchctl search-index documents content "machine learning"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, mode := args[0], args[1]
			text := strings.Join(args[2:], " ")
			if mode == searchapi.SearchContent && text == "" {
				return fmt.Errorf("search text is required for mode %q", mode)
			}

			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.SearchIndex(cmd.Context(), index, mode, text)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res.Result); err != nil {
				return err
			}
			if res.Count != nil {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "documents: %d\n", *res.Count)
			}
			return err
		},
	}
}

func newLookupDocCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup-doc <index> <key>",
		Short: "Fetch one document by key using the query key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.LookupDoc(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}
