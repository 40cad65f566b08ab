package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/domain/contact"
)

var contactForm contact.Form

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send the contact form",
	Long: `Send a message to the studio. No login is needed.

Example:
  fitclient contact --name "Jane Doe" --email jane@example.com \
    --subject general --message "Do you offer student discounts?"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.contact().Submit(ctx, contactForm); err != nil {
				return formatValidation(err)
			}
			printMessage(cmd.OutOrStdout(), "Thank you for your message! We'll get back to you soon.")
			return nil
		})
	},
}

func init() {
	f := contactCmd.Flags()
	f.StringVar(&contactForm.Name, "name", "", "your name")
	f.StringVar(&contactForm.Email, "email", "", "your email address")
	f.StringVar(&contactForm.Phone, "phone", "", "phone number (optional)")
	f.StringVar(&contactForm.Subject, "subject", "", "subject ("+strings.Join(contact.Subjects, "|")+")")
	f.StringVar(&contactForm.Message, "message", "", "message, at least 10 characters")
	rootCmd.AddCommand(contactCmd)
}
