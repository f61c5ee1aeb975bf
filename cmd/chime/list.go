package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/chime/internal/adapter/output"
	"github.com/jmylchreest/chime/internal/audio"
	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/daemon"
	"github.com/jmylchreest/chime/internal/model"
)

var listOpts struct {
	source   string
	limit    int
	search   string
	origin   string
	sortBy   string
	order    string
	format   string
	template string
	size     bool
}

var listCmd = &cobra.Command{
	Use:   "list [id|index|name]",
	Short: "List available notification sounds",
	Long: `List the notification sounds available on this system.

The first entry is always the system default sound, followed by at most
catalog.limit enumerated sounds in discovery order.

With an argument, outputs only the matching sound (id, locator, display
name or 1-based index).

Examples:
  # List sounds
  chime list

  # Pick a sound with fuzzel and preview it
  chime list --format dmenu | fuzzel -d | cut -d' ' -f1 | xargs chime play

  # Output as JSON including file sizes
  chime list --format json --size`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listOpts.source, "source", "",
		"Sound source (auto, freedesktop, directory, static; config value if empty)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of enumerated sounds (0=config value)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Only show sounds whose id or name contains this text")
	listCmd.Flags().StringVar(&listOpts.origin, "origin", "",
		"Only show sounds of this origin (system, app)")
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "catalog",
		"Sort by field (catalog, name, id, origin); the default sound stays first")
	listCmd.Flags().StringVar(&listOpts.order, "order", "asc",
		"Sort order (asc, desc)")
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, dmenu, ids)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain/dmenu output")
	listCmd.Flags().BoolVar(&listOpts.size, "size", false,
		"Show the file size of each sound")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	catCfg := getConfig().Catalog
	if listOpts.source != "" {
		catCfg.Source = listOpts.source
	}
	if listOpts.limit > 0 {
		catCfg.Limit = listOpts.limit
	}

	cat, err := daemon.BuildCatalog(catCfg, logger)
	if err != nil {
		return err
	}

	sounds, err := cat.ListAvailableSounds(ctx)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		entry, ok := catalog.Lookup(sounds, args[0])
		if !ok {
			return fmt.Errorf("sound not found: %s", args[0])
		}
		sounds = []model.SoundEntry{entry}
	}

	sounds = catalog.Filter(sounds, catalog.FilterOptions{
		Origin: listOpts.origin,
		Search: listOpts.search,
	})
	catalog.Sort(sounds, catalog.SortOptions{
		Field: catalog.ParseSortField(listOpts.sortBy),
		Order: catalog.ParseSortOrder(listOpts.order),
	})

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.ShowSize = listOpts.size
	opts.Resolve = audio.NewResolver(getConfig().Player.Aliases).Resolve

	formatter := output.NewFormatter(output.FormatType(listOpts.format), opts)
	return formatter.Format(os.Stdout, sounds)
}
