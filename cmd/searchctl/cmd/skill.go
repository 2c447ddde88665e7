package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newInvokeSkillCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "invoke-skill <text-file>",
		Short: "Send a text file to the top-words skill",
		Long: `Send the contents of a text file to the top-words skill as a one-record batch.

The local skill URL (skill.local_url) is used unless --remote is given, in which
case skill.remote_url (SEARCHKIT_SKILL_URL) is used. The reply is saved to
<output_dir>/invoke_skill_<file>.json.`,
		Example: `  searchctl invoke-skill data/sample.txt
  searchctl invoke-skill data/sample.txt --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillURL := a.cfg.Skill.LocalURL
			if remote {
				skillURL = a.cfg.Skill.RemoteURL
				if skillURL == "" {
					return errors.New("remote skill url is not configured (skill.remote_url or SEARCHKIT_SKILL_URL)")
				}
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read text file: %w", err)
			}

			base := filepath.Base(args[0])
			function := "invoke_skill_" + strings.TrimSuffix(base, filepath.Ext(base))
			res, err := a.client().InvokeSkill(cmd.Context(), skillURL, function, string(content))
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "response: %s\n", strings.TrimSpace(string(res.Body)))
			return err
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Call the deployed skill instead of the local one")

	return cmd
}
