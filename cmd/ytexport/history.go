package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous exports",
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

			exports, err := store.ListExports(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(exports) == 0 {
				fmt.Fprintln(out, "No exports yet.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"When", "Videos", "Page", "Source", "File"})
			for _, e := range exports {
				t.AppendRow(table.Row{
					e.CreatedAt.Format("2006-01-02 15:04"),
					e.VideoCount,
					e.PageType,
					e.Source,
					e.Path,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of exports to show (0 for all)")

	return cmd
}
