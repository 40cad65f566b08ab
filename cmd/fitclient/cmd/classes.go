package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/domain/schedule"
)

var bookClassName string

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Show the weekly class schedule",
	Long: `List every class grouped by weekday, Monday first, ordered by start time.
Classes with an unreadable start time are left out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			days, err := a.booking(ctx).Schedule(ctx)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), scheduleView(days))
		})
	},
}

var bookCmd = &cobra.Command{
	Use:   "book <class-id>",
	Short: "Book a class for the logged-in member",
	Long: `Book a class. Requires a session; nothing is sent otherwise.
A PENDING payment record is created afterwards unless booking.record_payment
is false.

Example:
  fitclient book 12 --name "Morning Yoga"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.booking(ctx).Book(ctx, args[0], bookClassName)
			if err != nil {
				return err
			}
			out := map[string]any{
				"booking":         result.Request,
				"paymentRecorded": result.PaymentRecorded,
			}
			if result.Response != nil && result.Response.Data != nil {
				out["response"] = result.Response.Data
			}
			return printValue(cmd.OutOrStdout(), out)
		})
	},
}

func init() {
	bookCmd.Flags().StringVar(&bookClassName, "name", "", "class name, used in the payment description")
	rootCmd.AddCommand(classesCmd, bookCmd)
}

type slotView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Start      string `json:"start"`
	Instructor string `json:"instructor,omitempty"`
	Room       string `json:"room,omitempty"`
	Enrollment string `json:"enrollment"`
	Full       bool   `json:"full"`
}

type dayView struct {
	Day     string     `json:"day"`
	Classes []slotView `json:"classes"`
}

func scheduleView(days []schedule.Day) []dayView {
	out := make([]dayView, 0, len(days))
	for _, d := range days {
		dv := dayView{Day: d.Name(), Classes: make([]slotView, 0, len(d.Slots))}
		for _, s := range d.Slots {
			dv.Classes = append(dv.Classes, slotView{
				ID:         s.ID.String(),
				Name:       s.Name,
				Start:      s.Start.Format(time.Kitchen),
				Instructor: s.Instructor(),
				Room:       s.Room,
				Enrollment: fmt.Sprintf("%d/%d", s.CurrentEnrollment, s.MaxCapacity),
				Full:       s.Full(),
			})
		}
		out = append(out, dv)
	}
	return out
}
