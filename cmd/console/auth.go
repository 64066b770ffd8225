package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/core/domain"
)

func newLoginCmd(load loader) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session in the token file",
		Long:  "Sign in against the orders API. Without --password the password is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if token, err := a.tokens.Token(ctx); err == nil && token != "" {
				if _, err := a.accessor.Current(ctx, a.caller()); err == nil {
					return domain.ErrAlreadySignedIn
				}
			}

			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			user, err := a.auth.Login(ctx, a.caller(), domain.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			logoutErr := a.auth.Logout(cmd.Context(), a.caller())
			if err := a.tokens.Remove(); err != nil {
				return errors.Join(logoutErr, err)
			}
			if logoutErr != nil {
				return logoutErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nrole: %s\nid:   %s\n", user.Name, user.Email, user.Role, user.ID)
			return nil
		},
	}
}
