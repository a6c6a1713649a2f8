package main

import (
	"errors"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/ytexport/video"
	"github.com/spf13/cobra"
)

var errNoStore = errors.New("no store configured (set storage.dsn)")

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change the saved extraction options",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved extraction options",
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
			printOptions(cmd.OutOrStdout(), opts)
			return nil
		},
	})

	var flags optionFlags
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the saved extraction options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if store == nil {
				return errNoStore
			}
			defer store.Close()

			opts, err := store.GetOptions()
			if err != nil {
				return err
			}
			opts = flags.apply(cmd.Flags(), opts)
			if err := store.SaveOptions(opts); err != nil {
				return err
			}

			printOptions(cmd.OutOrStdout(), opts)
			return nil
		},
	}
	flags.register(set.Flags(), true)
	cmd.AddCommand(set)

	return cmd
}

func printOptions(w io.Writer, opts video.Options) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Option", "Value"})
	t.AppendRows([]table.Row{
		{"Scroll to load more", onOff(opts.ScrollToLoadMore)},
		{"Include thumbnails", onOff(opts.IncludeThumbnails)},
		{"Include descriptions", onOff(opts.IncludeDescriptions)},
		{"Include view counts", onOff(opts.IncludeViewCounts)},
	})
	t.Render()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
