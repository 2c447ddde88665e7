package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"searchkit/internal/searchapi"
)

func newListCmd(a *app) *cobra.Command {
	plurals := []string{"indexes", "indexers", "datasources", "skillsets", "synmaps"}

	return &cobra.Command{
		Use:       "list {" + strings.Join(plurals, "|") + "}",
		Short:     "List every resource of a kind",
		Args:      cobra.ExactArgs(1),
		ValidArgs: plurals,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := searchapi.Kinds[args[0]]
			if !ok {
				return fmt.Errorf("unknown resource kind %q (want one of %s)", args[0], strings.Join(plurals, ", "))
			}
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	choices := []string{"index", "indexer", "indexer-status", "datasource", "skillset", "synmap"}

	return &cobra.Command{
		Use:       "get {" + strings.Join(choices, "|") + "} <name>",
		Short:     "Fetch one resource definition",
		Args:      cobra.ExactArgs(2),
		ValidArgs: choices,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}

			var res *searchapi.Result
			if args[0] == "indexer-status" {
				res, err = client.GetIndexerStatus(cmd.Context(), args[1])
			} else {
				kind, ok := searchapi.Kinds[args[0]]
				if !ok || kind.Label != args[0] {
					return fmt.Errorf("unknown resource kind %q (want one of %s)", args[0], strings.Join(choices, ", "))
				}
				res, err = client.Get(cmd.Context(), kind, args[1])
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

// newResourceCmds builds create-/update-/delete- commands for every schema-driven kind.
func newResourceCmds(a *app) []*cobra.Command {
	kinds := []searchapi.Kind{
		searchapi.KindIndex,
		searchapi.KindIndexer,
		searchapi.KindSynonymMap,
		searchapi.KindSkillset,
	}

	var cmds []*cobra.Command
	for _, kind := range kinds {
		cmds = append(cmds,
			newWriteCmd(a, kind, "create"),
			newWriteCmd(a, kind, "update"),
			newDeleteCmd(a, kind),
		)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Use < cmds[j].Use })
	return cmds
}

func newWriteCmd(a *app, kind searchapi.Kind, action string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s-%s <name> <schema>", action, kind.Label),
		Short: fmt.Sprintf("%s a %s from a JSON schema file", capitalize(action), kind.Label),
		Long: fmt.Sprintf(`%s a %s from a JSON schema file.

<schema> is a path ending in .json, or a bare name resolved to
<schema_dir>/<schema>.json. The schema's "name" is replaced by <name>.`, capitalize(action), kind.Label),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}

			var res *searchapi.Result
			if action == "create" {
				res, err = client.Create(cmd.Context(), kind, args[0], args[1])
			} else {
				res, err = client.Update(cmd.Context(), kind, args[0], args[1])
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func newDeleteCmd(a *app, kind searchapi.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("delete-%s <name>", kind.Label),
		Short: fmt.Sprintf("Delete a %s", kind.Label),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.Delete(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}

func newIndexerActionCmds(a *app) []*cobra.Command {
	reset := &cobra.Command{
		Use:   "reset-indexer <name>",
		Short: "Clear an indexer's change tracking so the next run reprocesses everything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.ResetIndexer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	run := &cobra.Command{
		Use:   "run-indexer <name>",
		Short: "Start an indexer now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.serviceClient()
			if err != nil {
				return err
			}
			res, err := client.RunIndexer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	return []*cobra.Command{reset, run}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
