package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

var openCmd = &cobra.Command{
	Use:   "open <page>",
	Short: "Check where a visit to a page lands",
	Long: `Decide whether the current session may open a page. Protected pages
(tracker, dashboard) need a token the backend still accepts and a role the
page's access rule allows; otherwise the visit lands on memberships.

Example:
  fitclient open dashboard`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := session.ParsePage(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			nav, err := a.navigation()
			if err != nil {
				return err
			}
			d := nav.Open(ctx, page)
			return printValue(cmd.OutOrStdout(), map[string]any{
				"requested":  page,
				"page":       d.Page,
				"reason":     d.Reason,
				"redirected": d.Redirected(page),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
