package main

import (
	"fmt"
	"time"

	"github.com/pevans/ytexport/config"
	"github.com/pevans/ytexport/csvexport"
	"github.com/pevans/ytexport/feed"
	"github.com/spf13/cobra"
)

func newImportFeedCommand() *cobra.Command {
	var (
		flags  optionFlags
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "import-feed <file>",
		Short: "Export the videos of a saved channel feed to CSV",
		Args:  cobra.ExactArgs(1),
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

			snap, err := feed.ParseFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d videos in %s\n", snap.VideoCount, args[0])

			if outDir == "" {
				outDir = cfg.Export.Dir
			}
			path, err := csvexport.WriteFile(outDir, snap.Videos, opts, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "CSV file saved to %s\n", path)

			recordExport(store, &config.Export{
				Path:       path,
				Source:     args[0],
				PageType:   snap.PageType,
				VideoCount: snap.VideoCount,
			})
			return nil
		},
	}

	flags.register(cmd.Flags(), false)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the CSV file to (default from config)")

	return cmd
}
