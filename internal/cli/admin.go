package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"backend-medcall/internal/app"
	"backend-medcall/internal/models"

	"github.com/spf13/cobra"
)

func (r *root) roomsCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List consulting rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				rooms := sess.GetRooms(ctx)
				if activeOnly {
					rooms = models.ActiveRooms(rooms)
				}
				return r.print(cmd.OutOrStdout(), rooms, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNUMBER\tDOCTOR\tSPECIALTY\tACTIVE")
					for _, room := range rooms {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
							room.ID, room.Number, room.DoctorName, room.Specialty, room.Active)
					}
					_ = tw.Flush()
				})
			})
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active rooms")
	return cmd
}

func (r *root) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the admin dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				stats := sess.Stats(ctx, time.Now())
				return r.print(cmd.OutOrStdout(), stats, func(w io.Writer) {
					fmt.Fprintf(w, "Total calls:  %d\n", stats.TotalCalls)
					fmt.Fprintf(w, "Calls today:  %d\n", stats.CallsToday)
					fmt.Fprintf(w, "Active rooms: %d\n", stats.ActiveRooms)
					fmt.Fprintf(w, "Waiting:      %d\n", stats.Waiting)
				})
			})
		},
	}
}
