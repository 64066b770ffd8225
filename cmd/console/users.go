package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/core/domain"
)

func newUsersCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Console users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every user (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx, domain.RoleAdmin); err != nil {
				return err
			}
			users, err := a.users.List(ctx, a.caller())
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "technicians",
		Short: "List users who can be assigned orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			users, err := a.users.Technicians(ctx, a.caller())
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		},
	})
	return cmd
}

func printUsers(cmd *cobra.Command, users []domain.User) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return w.Flush()
}
