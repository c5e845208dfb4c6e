package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"backend-medcall/internal/app"
	"backend-medcall/internal/models"

	"github.com/spf13/cobra"
)

func (r *root) enqueueCmd() *cobra.Command {
	var (
		roomID   string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "enqueue <patient name>",
		Short: "Add a patient to the waiting list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			p := models.Priority(priority)

			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				patient, err := sess.Queue.Register(ctx, name, p, roomID)
				if err != nil {
					return err
				}
				return r.print(cmd.OutOrStdout(), patient, func(w io.Writer) {
					fmt.Fprintf(w, "Ticket %s: %s -> room %s\n", patient.TicketNumber, patient.Name, patient.TargetRoomID)
					fmt.Fprintf(w, "ID: %s\n", patient.ID)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&roomID, "room", "r", "r1", "Target room id")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityNormal), "NORMAL or PREFERENCIAL")
	return cmd
}

func (r *root) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <patient id>",
		Short: "Remove a patient from the waiting list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				if err := sess.RemoveFromQueue(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func (r *root) queueCmd() *cobra.Command {
	var roomID string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List waiting patients in arrival order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				list := sess.GetWaitingList(ctx)
				if roomID != "" {
					list = sess.Queue.ListForRoom(ctx, roomID)
				}
				return r.print(cmd.OutOrStdout(), list, func(w io.Writer) {
					writeQueue(w, list)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&roomID, "room", "r", "", "Only patients for this room")
	return cmd
}

func writeQueue(w io.Writer, list []models.WaitingPatient) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No patients waiting")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKET\tNAME\tPRIORITY\tROOM\tSINCE\tID")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.TicketNumber, p.Name, p.Priority, p.TargetRoomID,
			p.CreatedAt.Local().Format("15:04"), p.ID)
	}
	_ = tw.Flush()
}
