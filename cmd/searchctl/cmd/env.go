package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDisplayEnvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "display-env",
		Short: "Show the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			rows := [][2]string{
				{"search_name", cfg.Search.Name},
				{"search_url", cfg.Search.URL},
				{"api_version", cfg.Search.APIVersion},
				{"search_admin_key", maskSecret(cfg.Search.AdminKey)},
				{"search_query_key", maskSecret(cfg.Search.QueryKey)},
				{"cogsvcs_key", maskSecret(cfg.Search.CognitiveServicesKey)},
				{"storage_connection", maskSecret(cfg.Datasources.StorageConnectionString)},
				{"cosmos_connection", maskSecret(cfg.Datasources.CosmosConnectionString)},
				{"skill_local_url", cfg.Skill.LocalURL},
				{"skill_remote_url", cfg.Skill.RemoteURL},
				{"output_dir", cfg.Paths.OutputDir},
				{"schema_dir", cfg.Paths.SchemaDir},
			}
			out := cmd.OutOrStdout()
			for _, row := range rows {
				value := row[1]
				if value == "" {
					value = "(not set)"
				}
				if _, err := fmt.Fprintf(out, "%-20s %s\n", row[0]+":", value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// maskSecret hides all but the last four characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
