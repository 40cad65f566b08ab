package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
)

var (
	bulkSubject string
	bulkMessage string

	callData     string
	callSkipAuth bool
)

var paymentStatusCmd = &cobra.Command{
	Use:   "payment-status <payment-id> <status>",
	Short: "Set the status of a payment",
	Long: `Set a payment's status, e.g. PAID or CANCELLED.

Example:
  fitclient payment-status 5 PAID`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.UpdatePaymentStatus(ctx, args[0], strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:       "dashboard [view]",
	Short:     "Fetch an admin dashboard view",
	Long:      `Fetch one analytics view: overview (default), members, revenue or classes.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: dashboardViewNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		view := api.DashboardOverview
		if len(args) == 1 {
			v, err := api.ParseDashboardView(args[0])
			if err != nil {
				return err
			}
			view = v
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.Dashboard(ctx, view)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send notifications to members",
}

var notifyClassRemindersCmd = &cobra.Command{
	Use:   "class-reminders <class-id>",
	Short: "Remind everyone booked on a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.SendClassReminders(ctx, args[0])
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var notifyPaymentRemindersCmd = &cobra.Command{
	Use:   "payment-reminders",
	Short: "Remind members with outstanding payments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.SendPaymentReminders(ctx)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var notifyBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Mail every member",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.SendBulkNotification(ctx, bulkSubject, bulkMessage)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "admin-stats",
	Short: "Fetch the admin statistics summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.AdminStatistics(ctx)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

var callCmd = &cobra.Command{
	Use:   "call <METHOD> <endpoint>",
	Short: "Send a raw request to the backend",
	Long: `Send one request to any endpoint under the base URL. The session token is
attached unless --skip-auth is set.

Example:
  fitclient call GET /classes/12
  fitclient call POST /progress --data @entry.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := parseMethod(args[0])
		if err != nil {
			return err
		}
		endpoint := args[1]
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		payload, err := readData(cmd.InOrStdin(), callData)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.client.Call(ctx, endpoint, api.CallOptions{
				Method:   method,
				Body:     payload,
				SkipAuth: callSkipAuth,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		})
	},
}

func init() {
	notifyBulkCmd.Flags().StringVar(&bulkSubject, "subject", "", "mail subject")
	notifyBulkCmd.Flags().StringVar(&bulkMessage, "message", "", "mail body")
	_ = notifyBulkCmd.MarkFlagRequired("subject")
	_ = notifyBulkCmd.MarkFlagRequired("message")
	notifyCmd.AddCommand(notifyClassRemindersCmd, notifyPaymentRemindersCmd, notifyBulkCmd)

	callCmd.Flags().StringVar(&callData, "data", "", "JSON request body, @file or @- for stdin")
	callCmd.Flags().BoolVar(&callSkipAuth, "skip-auth", false, "do not send the session token")

	rootCmd.AddCommand(paymentStatusCmd, dashboardCmd, notifyCmd, adminStatsCmd, callCmd)
}

func dashboardViewNames() []string {
	names := make([]string, len(api.DashboardViews))
	for i, v := range api.DashboardViews {
		names[i] = string(v)
	}
	return names
}

// parseMethod accepts the methods the backend uses, in any case.
func parseMethod(raw string) (api.Method, error) {
	switch m := api.Method(strings.ToUpper(raw)); m {
	case api.MethodGet, api.MethodPost, api.MethodPut, api.MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q (want GET, POST, PUT or DELETE)", raw)
	}
}
