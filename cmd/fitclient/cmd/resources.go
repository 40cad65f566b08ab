package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
)

// resourceCommands maps command names to backend resources. The class
// resource is exposed as classes-admin since "classes" shows the schedule.
var resourceCommands = []struct {
	use  string
	name api.ResourceName
}{
	{"members", api.Members},
	{"classes-admin", api.Classes},
	{"bookings", api.Bookings},
	{"payments", api.Payments},
	{"trainers", api.Trainers},
	{"progress", api.Progress},
	{"contact-messages", api.ContactMessages},
	{"admins", api.Admins},
}

func newResourceCmd(use string, name api.ResourceName) *cobra.Command {
	var data string

	verbs := api.Verbs(name)
	names := make([]string, len(verbs))
	for i, v := range verbs {
		names[i] = string(v)
	}

	cmd := &cobra.Command{
		Use:   use + " <verb> [id]",
		Short: fmt.Sprintf("Manage %s (%s)", name, strings.Join(names, ", ")),
		Long: fmt.Sprintf(`Run one operation on the %s resource.

Verbs: %s. get, update and delete need an id; create and update
take a JSON body with --data (inline, @file or @- for stdin).

Example:
  fitclient %s list
  fitclient %s update 4 --data '{"phone": "555 123 4567"}'`, name, strings.Join(names, ", "), use, use),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := api.Verb(strings.ToLower(args[0]))
			var id string
			if len(args) > 1 {
				id = args[1]
			}
			payload, err := readData(cmd.InOrStdin(), data)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				resp, err := a.client.Resource(name).Do(ctx, verb, id, payload)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body, @file or @- for stdin")
	return cmd
}

func init() {
	for _, rc := range resourceCommands {
		rootCmd.AddCommand(newResourceCmd(rc.use, rc.name))
	}
}
