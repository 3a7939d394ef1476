package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/supplier-gate/internal/checkin"
	"github.com/example/supplier-gate/internal/config"
	"github.com/example/supplier-gate/internal/db"
	"github.com/example/supplier-gate/internal/migrate"
	"github.com/example/supplier-gate/internal/store"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Print today's deliveries and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			svc := &checkin.Service{Store: store.NewPostgres(d), Clock: checkin.SystemClock{}}
			rows, err := svc.Board(ctx)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("no reservations today")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSUPPLIER\tBOOKED\tSTATUS\tARRIVED\tDELAY\tWAIT\tSERVICE\tTOTAL")
			for _, row := range rows {
				arrived, delay, wait, service, total := "-", "-", "-", "-", "-"
				if rec := row.Record; rec != nil {
					if rec.ArrivedAt != nil {
						arrived = rec.ArrivedAt.Format("15:04")
					}
					delay = fmtMinutes(rec.DelayMinutes)
					wait = fmtMinutes(rec.WaitMinutes)
					service = fmtMinutes(rec.ServiceMinutes)
					total = fmtMinutes(rec.TotalMinutes)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					row.Reservation.OrderID,
					row.Reservation.Supplier,
					row.Reservation.BookedRange,
					row.Status,
					arrived, delay, wait, service, total,
				)
			}
			return tw.Flush()
		},
	}
}

func fmtMinutes(m *int) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *m)
}
