package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"backend-medcall/internal/app"
	"backend-medcall/internal/dispatch"
	"backend-medcall/internal/models"

	"github.com/spf13/cobra"
)

func (r *root) callCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a patient into a room",
	}
	cmd.AddCommand(r.callNextCmd(), r.callManualCmd())
	return cmd
}

func (r *root) callNextCmd() *cobra.Command {
	var roomID string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Call the earliest patient waiting for a room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				call, err := sess.Calls.CallNext(ctx, roomID)
				if err != nil {
					return err
				}
				return r.printCall(cmd.OutOrStdout(), call)
			})
		},
	}
	cmd.Flags().StringVarP(&roomID, "room", "r", "r1", "Room calling the patient")
	return cmd
}

func (r *root) callManualCmd() *cobra.Command {
	var (
		roomID string
		ticket string
	)

	cmd := &cobra.Command{
		Use:   "manual <patient name>",
		Short: "Call a patient who is not in the waiting list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				call, err := sess.Calls.CallManual(ctx, dispatch.ManualCall{
					PatientName:  strings.Join(args, " "),
					TicketNumber: ticket,
					RoomID:       roomID,
				})
				if err != nil {
					return err
				}
				return r.printCall(cmd.OutOrStdout(), call)
			})
		},
	}
	cmd.Flags().StringVarP(&roomID, "room", "r", "", "Destination room id")
	cmd.Flags().StringVarP(&ticket, "ticket", "t", "", "Ticket number, if any")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func (r *root) recallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall <call id>",
		Short: "Call a past call again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				call, err := sess.Calls.Recall(ctx, args[0])
				if err != nil {
					return err
				}
				return r.printCall(cmd.OutOrStdout(), call)
			})
		},
	}
}

func (r *root) historyCmd() *cobra.Command {
	var (
		roomID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past calls, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				var history []models.PatientCall
				if roomID != "" {
					history = sess.Calls.RoomHistory(ctx, roomID, limit)
				} else {
					history = sess.GetHistory(ctx)
					if limit > 0 && len(history) > limit {
						history = history[:limit]
					}
				}
				return r.print(cmd.OutOrStdout(), history, func(w io.Writer) {
					writeCalls(w, history)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&roomID, "room", "r", "", "Only calls to this room")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of calls (0 for all)")
	return cmd
}

func (r *root) latestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the call on the panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				call := sess.GetLatestCall(ctx)
				if call == nil {
					return r.print(cmd.OutOrStdout(), call, func(w io.Writer) {
						fmt.Fprintln(w, "No calls yet")
					})
				}
				return r.printCall(cmd.OutOrStdout(), *call)
			})
		},
	}
}

func (r *root) printCall(w io.Writer, call models.PatientCall) error {
	return r.print(w, call, func(w io.Writer) {
		fmt.Fprintln(w, formatCall(call))
		fmt.Fprintf(w, "ID: %s\n", call.ID)
	})
}

func formatCall(call models.PatientCall) string {
	s := fmt.Sprintf("%s -> Consultório %s (%s)", call.PatientName, call.RoomName, call.DoctorName)
	if call.TicketNumber != "" {
		s = "[" + call.TicketNumber + "] " + s
	}
	return s
}

func writeCalls(w io.Writer, calls []models.PatientCall) {
	if len(calls) == 0 {
		fmt.Fprintln(w, "No calls yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTICKET\tPATIENT\tROOM\tDOCTOR\tID")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Timestamp.Local().Format("15:04:05"), c.TicketNumber, c.PatientName,
			c.RoomName, c.DoctorName, c.ID)
	}
	_ = tw.Flush()
}
