package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/chime/internal/adapter/output"
	"github.com/jmylchreest/chime/internal/dbus"
	"github.com/jmylchreest/chime/internal/preview"
)

var remoteOpts struct {
	format  string
	timeout time.Duration
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control a running chimed over D-Bus",
	Long: `Talk to the chimed daemon on the session bus.

Examples:
  chime remote list --format json
  chime remote start system_default
  chime remote stop
  chime remote state
  chime remote watch`,
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the daemon's sound catalog",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *dbus.Client, args []string) error {
		sounds, err := c.ListAvailableSounds(ctx)
		if err != nil {
			return describe(err)
		}
		return output.NewFormatter(output.FormatType(remoteOpts.format), output.DefaultFormatterOptions()).
			Format(os.Stdout, sounds)
	}),
}

var remoteStartCmd = &cobra.Command{
	Use:   "start <locator>",
	Short: "Start a preview in the daemon",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *dbus.Client, args []string) error {
		return describe(c.StartPreview(ctx, args[0]))
	}),
}

var remoteStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon's preview",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *dbus.Client, args []string) error {
		return describe(c.StopPreview(ctx))
	}),
}

var remoteStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the daemon's preview state",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *dbus.Client, args []string) error {
		st, err := c.GetState(ctx)
		if err != nil {
			return describe(err)
		}
		return writeStatus(os.Stdout, st)
	}),
}

var remoteWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print preview state changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := dbus.NewClient(logger)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		err = client.WatchState(ctx, func(st preview.Status) {
			if err := writeStatus(os.Stdout, st); err != nil {
				logger.Warn("failed to write state", "error", err)
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteListCmd, remoteStartCmd, remoteStopCmd, remoteStateCmd, remoteWatchCmd)

	remoteCmd.PersistentFlags().StringVarP(&remoteOpts.format, "format", "f", "plain",
		"Output format (plain, json; list also accepts yaml, dmenu, ids)")
	remoteCmd.PersistentFlags().DurationVar(&remoteOpts.timeout, "timeout", dbus.DefaultCallTimeout,
		"D-Bus call timeout")
}

// withClient runs fn with a connected client and a call timeout.
func withClient(fn func(ctx context.Context, c *dbus.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), remoteOpts.timeout)
		defer cancel()

		client, err := dbus.NewClient(logger)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		if !client.Available(ctx) {
			return fmt.Errorf("chimed is not running (no owner for %s)", dbus.DBusBusName)
		}
		return fn(ctx, client, args)
	}
}

// describe prefixes err with its boundary error kind.
func describe(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", preview.ErrorKind(err), err)
}

// writeStatus prints a status in the selected format.
func writeStatus(w io.Writer, st preview.Status) error {
	if remoteOpts.format == string(output.FormatJSON) {
		return output.NewJSONFormatter(output.DefaultFormatterOptions()).FormatSingle(w, st)
	}

	line := st.State.String()
	if st.Source != "" {
		line += "\t" + st.Source
	}
	if st.SessionID != "" {
		line += "\t" + st.SessionID
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
