package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitness-app/fitclient/internal/domain/session"
	"github.com/fitness-app/fitclient/internal/domain/validation"
)

var (
	loginUsername string
	loginPassword string

	registerForm session.RegistrationForm

	whoamiVerify bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session",
	Long: `Log in with a username and password. The token and user are kept in the
session store until logout.

The password is taken from --password, then FITCLIENT_PASSWORD, then the
first line of standard input.

Examples:
  fitclient login --username alice
  echo "$PW" | fitclient login -u alice`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a member account and log in",
	Long: `Register a new member account. The form is checked locally first:
the passwords must match and the password needs at least 8 characters,
an uppercase letter, a digit and a special character.

Example:
  fitclient register --email bob@example.com --first-name Bob --last-name Jones \
    --password 'Str0ng!pass' --confirm-password 'Str0ng!pass' --plan premium`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Long:  `Tell the backend to drop the token, then forget the local session. Never fails.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			a.sessions.Logout(ctx)
			printMessage(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Long: `Show the user kept in the session store. With --verify the token is
checked against the backend first; a rejected token ends the session.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Request a password reset mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.sessions.ResetPassword(ctx, strings.TrimSpace(args[0])); err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), "Password reset requested for %s", args[0])
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prefer FITCLIENT_PASSWORD or stdin)")
	_ = loginCmd.MarkFlagRequired("username")

	f := registerCmd.Flags()
	f.StringVar(&registerForm.Email, "email", "", "email address, also used as username")
	f.StringVar(&registerForm.Password, "password", "", "password")
	f.StringVar(&registerForm.ConfirmPassword, "confirm-password", "", "password again")
	f.StringVar(&registerForm.FirstName, "first-name", "", "first name")
	f.StringVar(&registerForm.LastName, "last-name", "", "last name")
	f.StringVar(&registerForm.Plan, "plan", "", "membership plan")

	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "check the token with the backend")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, resetPasswordCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := resolvePassword(cmd.InOrStdin(), loginPassword)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		result, err := a.sessions.Login(ctx, loginUsername, password)
		if err != nil {
			return err
		}
		return printAuthResult(cmd, a, result)
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		result, err := a.sessions.RegisterMember(ctx, registerForm)
		if err != nil {
			return formatValidation(err)
		}
		return printAuthResult(cmd, a, result)
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		user := a.sessions.CurrentUser()
		if whoamiVerify {
			var err error
			if user, err = a.sessions.VerifyToken(ctx); err != nil {
				return err
			}
		}
		return printValue(cmd.OutOrStdout(), userView(user))
	})
}

func printAuthResult(cmd *cobra.Command, a *app, result *session.AuthResult) error {
	view := userView(&result.User)
	view["destination"] = a.sessions.Destination(result.User.ParsedRole())
	return printValue(cmd.OutOrStdout(), view)
}

func userView(u *session.User) map[string]any {
	return map[string]any{
		"user":        u,
		"displayName": u.DisplayName(),
		"initials":    u.Initials(),
		"role":        u.ParsedRole().Short(),
	}
}

// resolvePassword picks the password from the flag, the environment or stdin.
func resolvePassword(stdin io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("FITCLIENT_PASSWORD"); env != "" {
		return env, nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required: use --password, FITCLIENT_PASSWORD or stdin")
	}
	return password, nil
}

// formatValidation lists every field message of a validation error on its own line.
func formatValidation(err error) error {
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		lines = append(lines, fmt.Sprintf("  %s: %s", fe.Field, fe.Message))
	}
	return fmt.Errorf("invalid input:\n%s", strings.Join(lines, "\n"))
}
