package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/preview"
)

var playOpts struct {
	timeout time.Duration
}

var playCmd = &cobra.Command{
	Use:   "play <id|locator|index|name>",
	Short: "Preview a sound locally",
	Long: `Play one sound in this process and wait until it finishes.

The argument is matched against the catalog (id, locator, display name,
then 1-based index). Anything else is played as a raw locator: a file
path, a file:// URL or an alias from [player.aliases].

Ctrl-C stops the preview. --timeout stops it after the given duration.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().DurationVarP(&playOpts.timeout, "timeout", "t", 0,
		"Stop the preview after this duration (0=play to the end)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if playOpts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, playOpts.timeout)
		defer cancel()
	}

	engine, err := startLocal(ctx)
	if err != nil {
		return err
	}
	defer engine.Stop()

	locator := args[0]
	if sounds, err := engine.ListAvailableSounds(ctx); err != nil {
		logger.Debug("catalog unavailable, playing argument as locator", "error", err)
	} else if entry, ok := catalog.Lookup(sounds, locator); ok {
		locator = entry.SourceLocator
	}

	done := make(chan struct{})
	var playing bool
	engine.AddStateListener(func(st preview.Status) {
		switch st.State {
		case preview.Playing:
			playing = true
		case preview.Idle:
			if playing {
				playing = false
				close(done)
			}
		}
	})

	if err := engine.Controller().StartPreview(ctx, locator); err != nil {
		return fmt.Errorf("%s: %w", preview.ErrorKind(err), err)
	}
	logger.Debug("preview started", "locator", locator)

	select {
	case <-done:
	case <-ctx.Done():
		if err := engine.Controller().StopPreview(); err != nil {
			return err
		}
	}
	return nil
}
