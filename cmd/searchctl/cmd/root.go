// Package cmd provides the commands of the searchctl CLI.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"searchkit/internal/config"
	"searchkit/internal/logging"
	"searchkit/internal/searchapi"
	"searchkit/pkg/version"
)

// app holds state shared by every subcommand of one root command.
type app struct {
	configPath string
	outputDir  string
	debug      bool

	cfg    config.AppConfig
	logger *slog.Logger
}

// NewRootCmd creates the root command for the searchctl CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Manage search indexes, indexers and the top-words skill",
		Long: `searchctl drives the search service REST API: it creates and updates
indexes, indexers, datasources, skillsets and synonym maps from JSON schema
files, runs searches, and invokes the top-words custom skill.

Every JSON reply is written pretty-printed to <output_dir>/<function>.json.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. Config file (--config, .toml or .yaml)
  3. Environment variables (AZURE_SEARCH_*, SEARCHKIT_*)
  4. Flags`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetVersionTemplate("searchctl version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a TOML or YAML config file")
	cmd.PersistentFlags().StringVar(&a.outputDir, "output-dir", "", "Directory for saved JSON replies (overrides paths.output_dir)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newDisplayEnvCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newGetCmd(a))
	cmd.AddCommand(newResourceCmds(a)...)
	cmd.AddCommand(newIndexerActionCmds(a)...)
	cmd.AddCommand(newDatasourceCmds(a)...)
	cmd.AddCommand(newSearchIndexCmd(a))
	cmd.AddCommand(newLookupDocCmd(a))
	cmd.AddCommand(newSchemaDiffCmds(a)...)
	cmd.AddCommand(newInvokeSkillCmd(a))
	cmd.AddCommand(newGenerateCmds(a)...)
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads configuration and the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.ApplyEnv()
	if a.outputDir != "" {
		cfg.Paths.OutputDir = a.outputDir
	}
	level := cfg.Logging.Level
	if a.debug {
		level = "debug"
	}

	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

// serviceClient returns a client for commands that talk to the search service.
func (a *app) serviceClient() (*searchapi.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return a.client(), nil
}

func (a *app) client() *searchapi.Client {
	return searchapi.NewClient(a.cfg, searchapi.WithLogger(a.logger))
}

// printResult reports where a reply was saved, or its status when nothing was written.
func printResult(w io.Writer, res *searchapi.Result) error {
	if res.SavedTo == "" {
		_, err := fmt.Fprintf(w, "%s: status %d\n", res.Function, res.StatusCode)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: status %d, saved %s\n", res.Function, res.StatusCode, res.SavedTo)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
