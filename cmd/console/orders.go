package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

func newOrdersCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, inspect and move service orders",
	}
	cmd.AddCommand(newOrdersListCmd(load))
	cmd.AddCommand(newOrdersShowCmd(load))
	cmd.AddCommand(newOrdersCreateCmd(load))
	cmd.AddCommand(newOrdersTransitionCmd(load, "check-in", "Move an order into progress", "Checked in"))
	cmd.AddCommand(newOrdersTransitionCmd(load, "check-out", "Complete an order", "Checked out"))
	return cmd
}

func newOrdersListCmd(load loader) *cobra.Command {
	var filter domain.OrderFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, filtered and paginated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.ValidStatusFilter(filter.Status) {
				return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
			}
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			page, err := a.orders.Page(ctx, a.caller(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCLIENT\tASSIGNEE\tCREATED")
			for _, o := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Status.Label(), o.Client, assigneeName(&o), formatTime(o.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d orders)\n", page.Page, max(page.TotalPages, 1), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match id, client or description")
	cmd.Flags().StringVar(&filter.Status, "status", "all", "all, aberta, em_andamento, concluida or cancelada")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "1-based page number")
	return cmd
}

func newOrdersShowCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an order and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := a.requireUser(ctx)
			if err != nil {
				return err
			}
			o, err := a.orders.Get(ctx, a.caller(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order %s\n", o.ID)
			fmt.Fprintf(out, "  client:      %s\n", o.Client)
			fmt.Fprintf(out, "  description: %s\n", o.Description)
			fmt.Fprintf(out, "  status:      %s\n", o.Status.Label())
			fmt.Fprintf(out, "  assignee:    %s\n", assigneeName(o))
			fmt.Fprintf(out, "  can manage:  %s\n", yesNo(o.CanBeManagedBy(user)))
			fmt.Fprintln(out, "Timeline")
			for _, ev := range domain.BuildTimeline(o) {
				line := fmt.Sprintf("  %s  %s", formatTime(ev.At), ev.Description)
				if ev.Actor != "" {
					line += " by " + ev.Actor
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newOrdersCreateCmd(load loader) *cobra.Command {
	var in domain.NewOrder

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new order (assigned to you unless --assignee is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := a.requireUser(ctx, domain.RoleAdmin, domain.RoleAgent)
			if err != nil {
				return err
			}
			o, err := a.orders.Create(ctx, a.caller(), user, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created order %s for %s\n", o.ID, o.Client)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Client, "client", "", "client name")
	cmd.Flags().StringVar(&in.Description, "description", "", "what has to be done")
	cmd.Flags().StringVar(&in.AssigneeID, "assignee", "", "user id of the technician (default: you)")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

type transitionFunc func(ctx context.Context, caller ports.Caller, id string) error

func newOrdersTransitionCmd(load loader, use, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			fn := transitionFunc(a.orders.CheckIn)
			if use == "check-out" {
				fn = a.orders.CheckOut
			}

			ctx := cmd.Context()
			user, err := a.requireUser(ctx, domain.RoleAdmin, domain.RoleAgent)
			if err != nil {
				return err
			}
			o, err := a.orders.Get(ctx, a.caller(), args[0])
			if err != nil {
				return err
			}
			if !o.CanBeManagedBy(user) {
				return fmt.Errorf("%w: order is assigned to someone else", domain.ErrForbidden)
			}
			if err := fn(ctx, a.caller(), o.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s order %s\n", done, o.ID)
			return nil
		},
	}
}
