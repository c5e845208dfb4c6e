// Package cli is the medcall command line: the reception and clinic
// operations against the shared store, plus a terminal TV panel.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"backend-medcall/internal/app"
	"backend-medcall/internal/config"

	"github.com/spf13/cobra"
)

// Opener returns a running session. The caller closes it.
type Opener func(ctx context.Context) (*app.Session, error)

// OpenFromEnv opens a session configured from .env and the environment.
func OpenFromEnv(ctx context.Context) (*app.Session, error) {
	config.LoadEnv()
	return app.Open(ctx, config.Load())
}

type root struct {
	open    Opener
	jsonOut bool
}

// NewRootCmd builds the command tree on top of open.
func NewRootCmd(open Opener) *cobra.Command {
	r := &root{open: open}

	cmd := &cobra.Command{
		Use:   "medcall",
		Short: "Patient calling for clinics",
		Long: `medcall registers patients in the waiting list, calls them into
consulting rooms and shows the calls as the TV panel does.

Every command works on the store selected by MEDCALL_STORE. Events reach
other processes only through the redis relay (MEDCALL_RELAY=redis).`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&r.jsonOut, "json", false, "Print results as JSON")

	cmd.AddCommand(
		r.enqueueCmd(),
		r.removeCmd(),
		r.queueCmd(),
		r.callCmd(),
		r.recallCmd(),
		r.historyCmd(),
		r.latestCmd(),
		r.roomsCmd(),
		r.statsCmd(),
		r.watchCmd(),
	)
	return cmd
}

// Execute runs the CLI against the environment configuration.
func Execute() error {
	return NewRootCmd(OpenFromEnv).Execute()
}

// run opens a session for the duration of fn.
func (r *root) run(cmd *cobra.Command, fn func(ctx context.Context, sess *app.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer sess.Close()

	return fn(ctx, sess)
}

// print writes v as JSON when --json is set, otherwise calls text.
func (r *root) print(w io.Writer, v any, text func(io.Writer)) error {
	if !r.jsonOut {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
