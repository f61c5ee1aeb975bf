package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/chime/internal/dbus"
	"github.com/jmylchreest/chime/internal/preview"
	"github.com/jmylchreest/chime/internal/tui"
)

var tuiOpts struct {
	local bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive sound picker",
	Long: `Launch the interactive terminal sound picker.

When chimed is running on the session bus the picker drives it over
D-Bus; otherwise sounds are previewed in this process.

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       Preview sound
  s           Stop preview
  i           Show sound details
  /           Search sounds
  r           Refresh catalog
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.local, "local", false,
		"Preview in this process even if chimed is running")
}

// localPreviewer adapts the in-process controller to the picker.
type localPreviewer struct {
	controller *preview.Controller
}

func (p localPreviewer) StartPreview(ctx context.Context, locator string) error {
	return p.controller.StartPreview(ctx, locator)
}

func (p localPreviewer) StopPreview(context.Context) error {
	return p.controller.StopPreview()
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := make(chan preview.Status, 16)
	publish := func(st preview.Status) {
		select {
		case states <- st:
		default:
			logger.Debug("dropping state update, picker is behind", "state", st.State)
		}
	}

	if !tuiOpts.local && getConfig().DBus.Enabled {
		if client, err := dbus.NewClient(logger); err == nil {
			defer func() { _ = client.Close() }()

			probeCtx, probeCancel := context.WithTimeout(ctx, 2*time.Second)
			available := client.Available(probeCtx)
			probeCancel()

			if available {
				logger.Debug("using chimed over D-Bus")
				go func() {
					if err := client.WatchState(ctx, publish); err != nil && ctx.Err() == nil {
						logger.Warn("state watch ended", "error", err)
					}
				}()
				return tui.Run(client, client, states)
			}
		} else {
			logger.Debug("session bus unavailable", "error", err)
		}
	}

	engine, err := startLocal(ctx)
	if err != nil {
		return err
	}
	defer engine.Stop()
	engine.AddStateListener(publish)

	return tui.Run(engine, localPreviewer{controller: engine.Controller()}, states)
}
