package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/orders-console/internal/core/domain"
)

func newReportsCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Aggregated order reports",
	}
	cmd.AddCommand(newReportsDailyCmd(load))
	return cmd
}

func newReportsDailyCmd(load loader) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily order counts and completion rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRange(from, to)
			if err != nil {
				return err
			}
			a, err := load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			reports, err := a.reports.Daily(ctx, a.caller(), r)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports in range")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "DATE\tTOTAL\tOPEN\tIN PROGRESS\tDONE\tCANCELLED\tRATE\t")
			for _, d := range reports {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\t\n",
					d.Date, d.TotalOrders, d.OpenOrders, d.InProgressOrders, d.CompletedOrders, d.CancelledOrders, d.CompletionRate)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, "+domain.ReportDateLayout)
	cmd.Flags().StringVar(&to, "to", "", "last day, "+domain.ReportDateLayout)
	return cmd
}

func parseRange(from, to string) (domain.ReportRange, error) {
	var (
		r   domain.ReportRange
		err error
	)
	if from != "" {
		if r.From, err = time.Parse(domain.ReportDateLayout, from); err != nil {
			return r, fmt.Errorf("%w: --from must be formatted as %s", domain.ErrInvalidInput, domain.ReportDateLayout)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(domain.ReportDateLayout, to); err != nil {
			return r, fmt.Errorf("%w: --to must be formatted as %s", domain.ErrInvalidInput, domain.ReportDateLayout)
		}
	}
	return r, r.Validate()
}
