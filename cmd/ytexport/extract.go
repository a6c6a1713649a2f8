package main

import (
	"fmt"
	"time"

	"github.com/pevans/ytexport/config"
	"github.com/pevans/ytexport/control"
	"github.com/pevans/ytexport/video"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// optionFlags binds the extraction option flags shared by extract,
// import-feed and options set.
type optionFlags struct {
	thumbnails   bool
	descriptions bool
	viewCounts   bool
	scroll       bool
}

func (f *optionFlags) register(flags *pflag.FlagSet, withScroll bool) {
	defaults := video.DefaultOptions()
	flags.BoolVar(&f.thumbnails, "thumbnails", defaults.IncludeThumbnails, "include the Thumbnail URL column")
	flags.BoolVar(&f.descriptions, "descriptions", defaults.IncludeDescriptions, "include the Description column")
	flags.BoolVar(&f.viewCounts, "view-counts", defaults.IncludeViewCounts, "include the View Count column")
	if withScroll {
		flags.BoolVar(&f.scroll, "scroll", defaults.ScrollToLoadMore, "scroll channel and playlist pages to load more videos")
	}
}

// apply overrides opts with the flags the user set explicitly.
func (f *optionFlags) apply(flags *pflag.FlagSet, opts video.Options) video.Options {
	if flags.Changed("thumbnails") {
		opts.IncludeThumbnails = f.thumbnails
	}
	if flags.Changed("descriptions") {
		opts.IncludeDescriptions = f.descriptions
	}
	if flags.Changed("view-counts") {
		opts.IncludeViewCounts = f.viewCounts
	}
	if flags.Lookup("scroll") != nil && flags.Changed("scroll") {
		opts.ScrollToLoadMore = f.scroll
	}
	return opts
}

// savedOptions returns the stored options, or the configured export options
// without a store.
func savedOptions(store *config.Store) (video.Options, error) {
	if store == nil {
		return cfg.Export.Options, nil
	}
	return store.GetOptions()
}

// recordExport adds an export to the history when a store is configured.
func recordExport(store *config.Store, e *config.Export) {
	if store == nil {
		return
	}
	if err := store.RecordExport(e); err != nil {
		log.Warn("Failed to record export", zap.Error(err))
	}
}

func newExtractCommand() *cobra.Command {
	var (
		flags  optionFlags
		outDir string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every video on the agent's page and export them to CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			opts, err := savedOptions(store)
			if err != nil {
				return err
			}
			opts = flags.apply(cmd.Flags(), opts)

			session, err := newSession()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status := session.Open(cmd.Context())
			fmt.Fprintln(out, status.Message)
			if status.Kind != control.StatusFound {
				return status.Err()
			}

			status = session.Extract(cmd.Context(), opts)
			fmt.Fprintln(out, status.Message)
			if err := status.Err(); err != nil {
				return err
			}

			if outDir == "" {
				outDir = cfg.Export.Dir
			}
			path, err := session.Export(outDir, time.Now())
			if err != nil {
				return fmt.Errorf("%s: %w", session.Status().Message, err)
			}
			fmt.Fprintln(out, session.Status().Message)

			snap, _ := session.PageInfo()
			recordExport(store, &config.Export{
				Path:       path,
				Source:     session.Address(),
				PageType:   snap.PageType,
				VideoCount: len(session.Records()),
			})

			if save && store != nil {
				if err := store.SaveOptions(opts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the CSV file to (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "remember these options for later runs")

	return cmd
}
