package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"backend-medcall/internal/app"
	"backend-medcall/internal/config"
	"backend-medcall/internal/display"

	"github.com/spf13/cobra"
)

func (r *root) watchCmd() *cobra.Command {
	var highlight string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the TV panel in the terminal until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return r.run(cmd, func(ctx context.Context, sess *app.Session) error {
				d := config.Load().Highlight
				if highlight != "" {
					parsed, err := time.ParseDuration(highlight)
					if err != nil {
						return err
					}
					d = parsed
				}

				w := cmd.OutOrStdout()
				panel := display.NewPanel(sess, sess.Bus, d)
				var mu sync.Mutex
				shown := "-"
				panel.OnChange = func(v display.View) {
					mu.Lock()
					defer mu.Unlock()

					// the end of a highlight repaints nothing new
					id := ""
					if v.Current != nil {
						id = v.Current.ID
					}
					if id == shown && !v.Highlighted {
						return
					}
					shown = id
					printView(w, v)
				}
				panel.Mount(ctx)
				defer panel.Unmount()

				<-ctx.Done()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&highlight, "highlight", "", "How long a new call stays highlighted (default MEDCALL_HIGHLIGHT)")
	return cmd
}

func printView(w io.Writer, v display.View) {
	if v.Current == nil {
		fmt.Fprintln(w, "Aguardando chamadas...")
		return
	}

	fmt.Fprintf(w, ">>> %s\n", formatCall(*v.Current))
	for _, c := range v.Recent {
		fmt.Fprintf(w, "    %s  %s\n", c.Timestamp.Local().Format("15:04"), formatCall(c))
	}
}
