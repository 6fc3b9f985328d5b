package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/swotlab/swotlab/internal/account"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(a), newUserLoginCmd(a), newUserListCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account",
		Long: `Create an account. The password is prompted for unless --password is given.

Examples:
  swotlab user create ana@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := promptPassword()
				if err != nil {
					return err
				}
				password = p
			}

			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				user, err := svc.accounts.Register(cmd.Context(), args[0], password)
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newUserLoginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Open a session and print the dashboard URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := promptPassword()
				if err != nil {
					return err
				}
				password = p
			}

			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				session, err := svc.accounts.Login(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Token: %s\n", session.Token)
				fmt.Fprintf(out, "Expires: %s\n", session.ExpiresAt(svc.accounts.TTL()).Format("2006-01-02 15:04 MST"))
				fmt.Fprintf(out, "Dashboard: http://localhost:%d/dashboard?token=%s\n", a.cfg.Port, session.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), nil, func(svc *services) error {
				users := svc.accounts.Users()
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No users yet.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "EMAIL\tID\tANALYSES\tCREATED")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
						u.Email,
						u.ID,
						len(svc.analyses.List(u.ID)),
						u.CreatedAt.Format("2006-01-02"),
					)
				}
				return w.Flush()
			})
		},
	}
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < account.MinPasswordLength {
				return account.ErrWeakPassword
			}
			if len(input) > account.MaxPasswordLength {
				return account.ErrPasswordTooLong
			}
			return nil
		},
	}

	password, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", errors.New("cancelled")
		}
		return "", err
	}
	return password, nil
}
